package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check if the dashboard server is running",
		Long:  "Query the readiness endpoint of a running 'modpanel serve' and report its session and data state.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	readyAddr := fmt.Sprintf("http://%s:%d/readyz", host, cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(readyAddr)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Server is not running at %s.\n", readyAddr)
		return nil
	}
	defer resp.Body.Close()

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&body)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Server is running (%s)\n", body.Status)
	fmt.Fprintf(w, "  Ready:    %s (%d)\n", readyAddr, resp.StatusCode)
	fmt.Fprintf(w, "  Session:  %s\n", body.Checks["session"])
	fmt.Fprintf(w, "  Data:     %s\n", body.Checks["data"])
	return nil
}
