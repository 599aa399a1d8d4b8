package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillexchange/modpanel/internal/server"
)

const banner = `
                     _                         _
 _ __ ___   ___   __| |_ __   __ _ _ __   ___| |
| '_ ' _ \ / _ \ / _' | '_ \ / _' | '_ \ / _ \ |
| | | | | | (_) | (_| | |_) | (_| | | | |  __/ |
|_| |_| |_|\___/ \__,_| .__/ \__,_|_| |_|\___|_|
                      |_|
`

func newServeCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the moderation dashboard API server",
		Long: `Start the HTTP server that exposes the moderation dashboard under /admin/api.

The server reuses the session saved by 'modpanel login', or an admin can log
in through POST /admin/api/session. Users and reports are refreshed in the
background while a session is active.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, dev)
		},
	}

	cmd.Flags().IntP("port", "p", 8090, "HTTP listen port")
	cmd.Flags().String("host", "127.0.0.1", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (debug logging, CORS *)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(cmd *cobra.Command, dev bool) error {
	if dev {
		verbose = true
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Print(banner)
	fmt.Println()

	srvCfg := server.DefaultConfig()
	srvCfg.Host = a.cfg.Server.Host
	srvCfg.Port = a.cfg.Server.Port
	srvCfg.ShutdownTimeout = parseDuration(a.cfg.Server.ShutdownTimeout, srvCfg.ShutdownTimeout)
	srvCfg.RefreshInterval = parseDuration(a.cfg.Server.RefreshInterval, srvCfg.RefreshInterval)
	srvCfg.LoginRateLimit = a.cfg.Server.LoginRateLimit
	srvCfg.SecureCookies = a.cfg.Server.SecureCookies
	srvCfg.Version = versionString()
	if len(a.cfg.Server.CORSOrigins) > 0 {
		srvCfg.CORSOrigins = a.cfg.Server.CORSOrigins
	}
	if dev {
		srvCfg.CORSOrigins = []string{"*"}
	}

	if a.manager.IsAuthed() {
		a.logger.Info("session restored", "email", a.manager.Snapshot().Email)
	} else {
		a.logger.Warn("no admin session - run 'modpanel login' or POST /admin/api/session")
	}

	srv := server.New(srvCfg, a.manager, a.cache, a.store, a.logger)

	base := fmt.Sprintf("http://%s:%d", srvCfg.Host, srvCfg.Port)
	fmt.Printf("→ modpanel %s\n", versionString())
	fmt.Printf("→ Backend:    %s\n", a.client.BaseURL())
	fmt.Printf("→ Listening:  %s\n", base)
	fmt.Printf("→ Dashboard:  %s/admin/api/dashboard\n", base)
	fmt.Printf("→ OpenAPI:    %s/openapi.json\n", base)
	fmt.Printf("→ Health:     %s/healthz\n", base)
	fmt.Printf("→ Refresh:    every %s\n", srvCfg.RefreshInterval.Round(time.Second))
	fmt.Println()

	return srv.ListenAndServe()
}
