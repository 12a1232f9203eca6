package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/wanderlust-backend/internal/apiclient"
	"github.com/angelmondragon/wanderlust-backend/internal/confirmation"
	"github.com/angelmondragon/wanderlust-backend/internal/wizard"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/money"
	pkgstripe "github.com/angelmondragon/wanderlust-backend/pkg/stripe"
)

// app carries what the commands share. newConfirmer is swapped in tests.
type app struct {
	out          io.Writer
	loadConfig   func() (*config.ClientConfig, error)
	newConfirmer func(cfg *config.ClientConfig) (confirmation.Confirmer, error)
	logg         *logger.Logger
}

func defaultApp() *app {
	return &app{
		out:        os.Stdout,
		loadConfig: config.LoadClient,
		newConfirmer: func(cfg *config.ClientConfig) (confirmation.Confirmer, error) {
			public, err := pkgstripe.NewPublicClient(cfg.Stripe, cfg.Booking.ConfirmationHTTPTimeout)
			if err != nil {
				return nil, err
			}
			return confirmation.NewStripeConfirmer(public, cfg.Booking.ConfirmationReturnURL), nil
		},
		logg: logger.New(logger.Options{ServiceName: "bookctl", Level: logger.ParseLevel("warn"), Output: os.Stderr}),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "Quote, book and list trips against the booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("api", "", "booking API base URL (defaults to WANDERLUST_PUBLIC_URL)")

	root.AddCommand(
		quoteCmd(a),
		bookCmd(a),
		bookingsCmd(a),
	)
	return root
}

func (a *app) client(cmd *cobra.Command) (*apiclient.Client, *config.ClientConfig, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	baseURL, _ := cmd.Flags().GetString("api")
	if baseURL == "" {
		baseURL = cfg.APIURL
	}
	client, err := apiclient.New(baseURL)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "item type: hotel, package or destination")
	cmd.Flags().String("item", "", "catalog item id")
	cmd.Flags().Int("travelers", 1, "number of travelers")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("item")
}

func selectionFromFlags(cmd *cobra.Command) (wizard.Selection, error) {
	rawType, _ := cmd.Flags().GetString("type")
	itemType, err := enums.ParseItemType(rawType)
	if err != nil {
		return wizard.Selection{}, err
	}
	itemID, _ := cmd.Flags().GetString("item")
	travelers, _ := cmd.Flags().GetInt("travelers")
	if travelers < 1 {
		return wizard.Selection{}, errors.New("--travelers must be at least 1")
	}
	sel := wizard.Selection{ItemType: itemType, ItemID: strings.TrimSpace(itemID), Travelers: travelers}
	if cmd.Flags().Lookup("dates") != nil {
		sel.Dates, _ = cmd.Flags().GetString("dates")
		sel.UserID, _ = cmd.Flags().GetString("user")
	}
	return sel, nil
}

func quoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show the price breakdown for a trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			sel, err := selectionFromFlags(cmd)
			if err != nil {
				return err
			}
			quote, err := client.Quote(cmd.Context(), sel.ItemType, sel.ItemID, sel.Travelers)
			if err != nil {
				return err
			}
			printQuote(a.out, quote.UnitPriceCents, quote.Travelers, quote.SubtotalCents, quote.FeesCents, quote.DisplayTotalCents)
			return nil
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func printQuote(out io.Writer, unit int64, travelers int, subtotal, fees, total int64) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Unit price\t%s\n", money.FormatDisplay(unit))
	fmt.Fprintf(tw, "Travelers\t%d\n", travelers)
	fmt.Fprintf(tw, "Subtotal\t%s\n", money.FormatDisplay(subtotal))
	fmt.Fprintf(tw, "Service fee\t%s\n", money.FormatDisplay(fees))
	fmt.Fprintf(tw, "Total\t%s\n", money.FormatDisplay(total))
	tw.Flush()
}

func bookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Pay for a trip and record the booking",
		Long: "Runs the booking wizard: review the quote, open a payment intent through the API, " +
			"confirm it with the processor using the publishable key, then record the booking.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := a.client(cmd)
			if err != nil {
				return err
			}
			sel, err := selectionFromFlags(cmd)
			if err != nil {
				return err
			}
			paymentMethod, _ := cmd.Flags().GetString("payment-method")
			receiptPath, _ := cmd.Flags().GetString("receipt")

			confirmer, err := a.newConfirmer(cfg)
			if err != nil {
				return err
			}
			w, err := wizard.New(wizard.Params{
				Selection: sel,
				Intents:   client,
				Recorder:  client,
				Confirmer: confirmer,
				Quoter:    client,
				Logger:    a.logg,
			})
			if err != nil {
				return err
			}
			return a.runWizard(cmd.Context(), w, client, paymentMethod, receiptPath)
		},
	}
	addSelectionFlags(cmd)
	cmd.Flags().String("dates", "", "travel dates label, e.g. \"Jun 1 - Jun 8\"")
	cmd.Flags().String("user", "", "user id to book under")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().String("payment-method", "pm_card_visa", "processor payment method id")
	cmd.Flags().String("receipt", "", "write the PDF receipt to this path")
	return cmd
}

func (a *app) runWizard(ctx context.Context, w *wizard.Wizard, client *apiclient.Client, paymentMethod, receiptPath string) error {
	quote, err := w.Review(ctx)
	if err != nil {
		return err
	}
	printQuote(a.out, quote.UnitPriceCents, quote.Travelers, quote.SubtotalCents, quote.FeesCents, quote.DisplayTotalCents)

	if err := w.Continue(ctx); err != nil {
		return fmt.Errorf("could not start payment: %w", err)
	}
	intent := w.Intent()
	fmt.Fprintf(a.out, "Charging %s\n", money.FormatDisplay(intent.Amount))

	if err := w.Pay(ctx, paymentMethod); err != nil {
		var confirmErr *confirmation.ConfirmationError
		if errors.As(err, &confirmErr) {
			return fmt.Errorf("payment failed: %s", confirmErr.Message)
		}
		return err
	}

	receipt, err := w.Receipt()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Payment confirmed (%s)\n", receipt.PaymentIntentID)
	if receipt.BookingID == "" {
		fmt.Fprintln(a.out, "Booking reference unavailable; contact support with the payment reference above.")
		return nil
	}
	fmt.Fprintf(a.out, "Booking %s\n", receipt.BookingID)

	if receiptPath == "" {
		return nil
	}
	f, err := os.Create(receiptPath)
	if err != nil {
		return err
	}
	if err := client.DownloadReceipt(ctx, receipt.BookingID, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Receipt saved to %s\n", receiptPath)
	return nil
}

func bookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List a user's bookings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			userID, _ := cmd.Flags().GetString("user")
			cursor, _ := cmd.Flags().GetString("cursor")
			limit, _ := cmd.Flags().GetInt("limit")

			list, err := client.ListBookings(cmd.Context(), userID, cursor, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tITEM\tTRAVELERS\tTOTAL\tSTATUS\tCREATED")
			for _, b := range list.Bookings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					b.ID, b.ItemType, b.ItemID, b.Travelers, b.TotalPrice, b.Status, b.CreatedAt.Format("2006-01-02"))
			}
			tw.Flush()
			if list.NextCursor != "" {
				fmt.Fprintf(a.out, "next cursor: %s\n", list.NextCursor)
			}
			return nil
		},
	}
	cmd.Flags().String("user", "", "user id")
	cmd.Flags().String("cursor", "", "cursor from a previous page")
	cmd.Flags().Int("limit", 20, "page size")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
