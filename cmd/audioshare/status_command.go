package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"audioshare/internal/share"
	"audioshare/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recently shared audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			items, err := st.RecentAudio(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No shared audio yet")
				return nil
			}

			headers := []string{"SHORT URL", "FILE", "TYPE", "VISITS", "DOWNLOADS", "UPLOADER", "EXPIRES"}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.ShortID,
					item.FileName,
					item.AudioType,
					strconv.FormatInt(item.VisitCount, 10),
					strconv.FormatInt(item.DownloadCount, 10),
					share.IntToIP(item.UploadIP),
					formatExpiry(item.ExpireTime),
				})
			}

			if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				fmt.Fprintln(out, renderTable(headers, rows, 3, 4))
				return nil
			}
			fmt.Fprintln(out, strings.Join(headers, "\t"))
			for _, row := range rows {
				fmt.Fprintln(out, strings.Join(row, "\t"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func formatExpiry(expireTime time.Time) string {
	remaining := time.Until(expireTime)
	if remaining <= 0 {
		return "expired"
	}
	return fmt.Sprintf("%s (%s)", expireTime.Local().Format("2006-01-02 15:04"), remaining.Round(time.Minute))
}
