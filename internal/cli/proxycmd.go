package cli

import (
	"fmt"
	"net/http"

	"syncline/internal/proxy"

	"github.com/spf13/cobra"
)

func newProxyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Asset-discovery proxy commands",
	}
	cmd.AddCommand(newProxyServeCmd(app))
	return cmd
}

func newProxyServeCmd(app *App) *cobra.Command {
	var addr, upstream string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the asset-discovery proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := proxy.NewServer(proxy.ServerConfig{Addr: addr, UpstreamBase: upstream})
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "proxy listening on %s\n", srv.Addr())
			return http.ListenAndServe(srv.Addr(), srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8085", "Listen address")
	cmd.Flags().StringVar(&upstream, "upstream", "", "Vendor gateway base URL ({region} is substituted)")
	return cmd
}
