package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
)

var rule = strings.Repeat("=", 70)

// StdoutNotifier prints each listing as a boxed block
type StdoutNotifier struct {
	out io.Writer
	log *logger.Logger
}

// NewStdoutNotifier creates a notifier writing to out, or stdout when nil
func NewStdoutNotifier(out io.Writer) *StdoutNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &StdoutNotifier{out: out, log: logger.ForNotifier("stdout")}
}

func (n *StdoutNotifier) Name() string {
	return "stdout"
}

func (n *StdoutNotifier) SendItem(ctx context.Context, item listing.Listing) error {
	title := orDefault(item.Title, "Unknown")
	price := orDefault(item.Price, "N/A")

	_, err := fmt.Fprintf(n.out, "\n%s\nSOURCE: %s\nTITLE:  %s\nPRICE:  %s\nURL:    %s\n%s\n\n",
		rule, orDefault(item.Source, "unknown"), title, price, item.URL, rule)
	if err != nil {
		return err
	}
	n.log.Info().Str("title", title).Str("price", price).Msg("Item found")
	return nil
}

func (n *StdoutNotifier) SendItems(ctx context.Context, items []listing.Listing) error {
	for _, item := range items {
		if err := n.SendItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
