// jmaobs — tabular observation data and station metadata from the
// JMA web portal and station master index.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yamori/jmaobs/api"
	"github.com/yamori/jmaobs/internal/config"
	"github.com/yamori/jmaobs/internal/portal"
	"github.com/yamori/jmaobs/internal/smaster"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jmaobs",
	Short: "jmaobs — JMA observation portal scraper",
	Long: `jmaobs retrieves tabular meteorological observation data and
station metadata from the JMA web portal: station and element
discovery, the rendered daily table, the CSV download workflow, and
the fixed-width station master index file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(prefecturesCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(elementsCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(smasterCmd)
	rootCmd.AddCommand(serveCmd)
}

// newPortalClient builds a portal client from the loaded config.
func newPortalClient() *portal.Client {
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{
		Timeout: cfg.Portal.Timeout(),
		Jar:     jar,
	}
	return portal.NewWithHTTPClient(cfg.Portal.Endpoints(), hc)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jmaobs %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Prefectures Command ---

var prefecturesCmd = &cobra.Command{
	Use:   "prefectures",
	Short: "List prefecture ids and names from the station selection page",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefectures, err := newPortalClient().Prefectures(cmd.Context())
		if err != nil {
			return err
		}
		ids := make([]int, 0, len(prefectures))
		for id := range prefectures {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Printf("%d\t%s\n", id, prefectures[id])
		}
		return nil
	},
}

// --- Stations Command ---

var stationsCmd = &cobra.Command{
	Use:   "stations [prefecture-id]",
	Short: "List stations for a prefecture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("prefecture id must be an integer: %q", args[0])
		}
		stations, err := newPortalClient().Stations(cmd.Context(), prefID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(stations))
		for id := range stations {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			st := stations[id]
			caps := "-"
			if c := st.Capabilities; c != nil {
				caps = fmt.Sprintf("rain=%t wind=%t temp=%t sun=%t snow=%t etc=%t",
					c.Rain, c.Wind, c.Temp, c.Sun, c.Snow, c.Etc)
			}
			fmt.Printf("%s\t%s\t%s\n", st.ID, st.Name, caps)
		}
		return nil
	},
}

// --- Periods Command ---

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List aggregation periods from the element selection page",
	RunE: func(cmd *cobra.Command, args []string) error {
		periods, err := newPortalClient().AggregationPeriods(cmd.Context())
		if err != nil {
			return err
		}
		ids := make([]int, 0, len(periods))
		for id := range periods {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			p := periods[id]
			if len(p.Range) > 0 {
				fmt.Printf("%d\t%s\trange=%v\n", id, p.Name, p.Range)
			} else {
				fmt.Printf("%d\t%s\n", id, p.Name)
			}
		}
		return nil
	},
}

// --- Elements Command ---

var elementsCmd = &cobra.Command{
	Use:   "elements [period-id]",
	Short: "List selectable elements for an aggregation period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		periodID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("period id must be an integer: %q", args[0])
		}
		kind := portal.MeteorologicalElements
		if other, _ := cmd.Flags().GetBool("other"); other {
			kind = portal.OtherElements
		}
		elements, err := newPortalClient().Elements(cmd.Context(), periodID, kind)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(elements))
		for id := range elements {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			def := elements[id]
			line := fmt.Sprintf("%s\t%s", id, def.Name)
			if len(def.Options) > 0 {
				line += fmt.Sprintf("\toptions=%v", def.Options)
			}
			if def.Hidden != nil {
				line += fmt.Sprintf("\tdefault=%s", def.Hidden)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	elementsCmd.Flags().Bool("other", false, "list non-meteorological elements")
}

// --- Daily Command ---

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Fetch the rendered daily observation table for a station",
	RunE: func(cmd *cobra.Command, args []string) error {
		precNo, _ := cmd.Flags().GetInt("prec")
		blockNo, _ := cmd.Flags().GetInt("block")
		dateStr, _ := cmd.Flags().GetString("date")
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %q", dateStr)
		}

		table, err := newPortalClient().DailyTable(cmd.Context(), precNo, blockNo, day)
		if err != nil {
			return err
		}
		return table.WriteCSV(os.Stdout)
	},
}

func init() {
	dailyCmd.Flags().Int("prec", 0, "region code (prec_no)")
	dailyCmd.Flags().Int("block", 0, "station code (block_no)")
	dailyCmd.Flags().String("date", "", "observation date (YYYY-MM-DD)")
	dailyCmd.MarkFlagRequired("prec")
	dailyCmd.MarkFlagRequired("block")
	dailyCmd.MarkFlagRequired("date")
}

// --- Download Command ---

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download observation data via the portal's CSV workflow",
	Long: `Download observation data as CSV: acquires a session id (unless
--session is given), posts the download form, and prints the parsed
table with its collapsed multi-row header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetInt("period")
		station, _ := cmd.Flags().GetString("station")
		elementsStr, _ := cmd.Flags().GetString("elements")
		beginStr, _ := cmd.Flags().GetString("begin")
		endStr, _ := cmd.Flags().GetString("end")
		session, _ := cmd.Flags().GetString("session")

		var elements []int
		for _, part := range strings.Split(elementsStr, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("element id must be an integer: %q", part)
			}
			elements = append(elements, id)
		}
		begin, err := time.Parse("2006-01-02", beginStr)
		if err != nil {
			return fmt.Errorf("begin must be YYYY-MM-DD: %q", beginStr)
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return fmt.Errorf("end must be YYYY-MM-DD: %q", endStr)
		}

		client := newPortalClient()
		if session == "" {
			session, err = client.SessionID(cmd.Context())
			if err != nil {
				return err
			}
		}

		table, err := client.DownloadCSV(cmd.Context(), portal.DownloadRequest{
			SessionID:         session,
			AggregationPeriod: period,
			Station:           station,
			Elements:          elements,
			Begin:             begin,
			End:               end,
		})
		if err != nil {
			return err
		}
		return table.WriteCSV(os.Stdout)
	},
}

func init() {
	downloadCmd.Flags().Int("period", 1, "aggregation period id")
	downloadCmd.Flags().String("station", "", "station code (e.g. s47662)")
	downloadCmd.Flags().String("elements", "", "comma-separated element ids")
	downloadCmd.Flags().String("begin", "", "begin date (YYYY-MM-DD)")
	downloadCmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	downloadCmd.Flags().String("session", "", "reuse an existing session id")
	downloadCmd.MarkFlagRequired("station")
	downloadCmd.MarkFlagRequired("elements")
	downloadCmd.MarkFlagRequired("begin")
	downloadCmd.MarkFlagRequired("end")
}

// --- Smaster Command ---

var smasterCmd = &cobra.Command{
	Use:   "smaster [file]",
	Short: "Read a station master index file and print it as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := smaster.ReadFile(args[0])
		if err != nil {
			return err
		}
		return smaster.ToTable(records).WriteCSV(os.Stdout)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting jmaobs API server on %s\n", addr)
		return api.NewServer(cfg).ListenAndServe(addr)
	},
}
