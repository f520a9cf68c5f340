package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carrete-admin/internal/config"
	"carrete-admin/internal/orders"
	"carrete-admin/internal/reservations"
	"carrete-admin/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, config.AppEnv, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		Store:               a.store,
		Identity:            a.identity,
		Sessions:            a.sessions,
		Admins:              a.admins,
		Orders:              a.orders,
		Reservations:        a.reservations,
		Logger:              logger.Named("http"),
		RequestTimeout:      a.cfg.RequestTimeout,
		RegistrationEnabled: a.cfg.RegistrationEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

var (
	filter     orders.Criteria
	jsonOutput bool
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Print orders, most recent first",
	Long: `Prints every order sorted by date and time, most recent first.
Filters behave like the admin API: text filters match case-insensitively,
date bounds compare the calendar date, total bounds are inclusive, and a
bound that does not parse is ignored.`,
	RunE: runOrders,
}

var reservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Print customers ranked by number of reservations",
	RunE:  runReservations,
}

func init() {
	ordersCmd.Flags().StringVar(&filter.Address, "address", "", "address contains")
	ordersCmd.Flags().StringVar(&filter.City, "city", "", "city contains")
	ordersCmd.Flags().StringVar(&filter.DateFrom, "date-from", "", "earliest date (inclusive)")
	ordersCmd.Flags().StringVar(&filter.DateTo, "date-to", "", "latest date (inclusive)")
	ordersCmd.Flags().StringVar(&filter.TotalFrom, "total-from", "", "minimum total (inclusive)")
	ordersCmd.Flags().StringVar(&filter.TotalTo, "total-to", "", "maximum total (inclusive)")

	for _, cmd := range []*cobra.Command{ordersCmd, reservationsCmd} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
	}
}

func runOrders(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), config.AppEnv.RequestTimeout)
	defer cancel()

	a, err := newApp(ctx, config.AppEnv, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	listing, err := a.orders.List(ctx, filter)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), listing)
	}
	return writeOrders(cmd.OutOrStdout(), listing)
}

func runReservations(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), config.AppEnv.RequestTimeout)
	defer cancel()

	a, err := newApp(ctx, config.AppEnv, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ranking, err := a.reservations.Ranking(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), ranking)
	}
	return writeRanking(cmd.OutOrStdout(), ranking)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOrders(w io.Writer, listing orders.Listing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCITY\tADDRESS\tTOTAL")
	for _, o := range listing.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\n", o.ID, o.Date, o.Time, o.City, o.Address, o.Total)
	}
	fmt.Fprintf(tw, "\n%d of %d orders\n", listing.Matched, listing.Total)
	return tw.Flush()
}

func writeRanking(w io.Writer, ranking []reservations.Customer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tPHONE\tRESERVATIONS")
	for _, c := range ranking {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Email, c.Name, c.Phone, c.ReservationCount)
	}
	return tw.Flush()
}
