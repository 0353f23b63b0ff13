package crawler

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/partsfinder/helpers"
)

// attachmentEndpoint is where vBulletin serves uploaded images
const attachmentEndpoint = "attachment.php"

// minImageDimension rejects spacers and icons that declare their size
const minImageDimension = 50

// UI chrome (icons, smilies, status indicators, etc.)
var skipPatterns = []string{
	"banner", "icon", "logo", "nav", "avatar",
	"1x1", "spacer", "button", "pixel",
	"smilie", "smiley", "emoji", "emoticon",
	"statusicon", "inlinemod", "reputation",
	"clear.gif", "/misc/", "/buttons/",
	"/icons/", "progress_bar", "rank",
	"forum_old", "collapse_", "postcount",
	"vbulletin_css", "/images/ranks/",
}

// imageSource returns src, or the lazy-load data-src when src is empty
func imageSource(img *goquery.Selection) string {
	if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(img.AttrOr("data-src", ""))
}

// isContentImage reports whether an img tag looks like real post content
func isContentImage(img *goquery.Selection) bool {
	src := strings.ToLower(imageSource(img))
	if src == "" {
		return false
	}
	for _, p := range skipPatterns {
		if strings.Contains(src, p) {
			return false
		}
	}
	for _, attr := range []string{"width", "height"} {
		if tooSmall(img.AttrOr(attr, "")) {
			return false
		}
	}
	return true
}

// tooSmall reports whether a declared dimension is below the minimum.
// Missing or unparsable values ("100%") are not a reason to reject.
func tooSmall(declared string) bool {
	declared = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(declared), "px"))
	if declared == "" {
		return false
	}
	n, err := strconv.Atoi(declared)
	if err != nil {
		return false
	}
	return n < minImageDimension
}

// SelectImage picks the most likely content image of a thread page.
// doc is the whole page, content the first post's body (or doc itself in
// degraded mode). The returned URL is absolute; ok is false when nothing
// qualified.
func SelectImage(doc, content *goquery.Selection, pageURL string) (image string, ok bool) {
	strategies := []func() string{
		func() string { return attachedImage(doc) },
		func() string { return firstContentImage(content) },
		func() string { return attachmentThumbnailLink(doc) },
	}
	for _, strategy := range strategies {
		if src := strategy(); src != "" {
			return helpers.ResolveURL(pageURL, src), true
		}
	}
	return "", false
}

// attachedImage looks for images served by the attachment endpoint, first by
// src and then by lazy-load data-src.
func attachedImage(doc *goquery.Selection) string {
	imgs := doc.Find(`img[src*="` + attachmentEndpoint + `"]`)
	if imgs.Length() == 0 {
		imgs = doc.Find(`img[data-src*="` + attachmentEndpoint + `"]`)
	}
	return firstContentImage(imgs)
}

// firstContentImage returns the source of the first img (in or below sel)
// passing the content-image predicate
func firstContentImage(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	imgs := sel.Filter("img").AddSelection(sel.Find("img"))
	var found string
	imgs.EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if isContentImage(img) {
			found = imageSource(img)
			return false
		}
		return true
	})
	return found
}

// attachmentThumbnailLink returns the full-size target of the first
// attachment link wrapping a thumbnail image
func attachmentThumbnailLink(doc *goquery.Selection) string {
	var found string
	doc.Find(`a[href*="` + attachmentEndpoint + `"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		thumb := link.Find("img").First()
		if thumb.Length() == 0 {
			return true
		}
		thumbSrc := imageSource(thumb)
		if thumbSrc == "" {
			return true
		}
		found = strings.TrimSpace(link.AttrOr("href", ""))
		if found == "" {
			found = thumbSrc
		}
		return false
	})
	return found
}
