package cli

import (
	"fmt"
	"time"

	"syncline/internal/model"
	"syncline/internal/mutate"
	"syncline/internal/proxy"
	"syncline/internal/store"

	"github.com/spf13/cobra"
)

const defaultProxyURL = "http://127.0.0.1:8085"

func newAssetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Discover upstream assets through the proxy",
	}
	cmd.AddCommand(newAssetsTypesCmd(app))
	cmd.AddCommand(newAssetsListCmd(app))
	cmd.AddCommand(newAssetsSearchCmd(app))
	cmd.AddCommand(newAssetsLoadCmd(app))
	return cmd
}

// proxyCreds resolves the tenant a discovery command runs as and stamps its
// last-used time.
func proxyCreds(db *store.DB, s store.Store, tenantFlag string) (proxy.Credentials, error) {
	var t *model.Tenant
	if tenantFlag != "" {
		found, ok := db.FindTenant(tenantFlag)
		if !ok {
			return proxy.Credentials{}, errNotFound("tenant", tenantFlag)
		}
		t = found
	} else {
		found, ok := db.DefaultTenant()
		if !ok {
			return proxy.Credentials{}, fmt.Errorf("no stored tenants; run `syncline tenants add` first")
		}
		t = found
	}
	t.LastUsed = time.Now().UTC()
	_ = s.Save(db)
	return proxy.Credentials{
		TenantID:     t.TenantID,
		ClientID:     t.ClientID,
		ClientSecret: t.ClientSecret,
		Region:       t.Region,
	}, nil
}

func newAssetsTypesCmd(app *App) *cobra.Command {
	var tenantID, proxyURL string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List upstream asset types",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			creds, err := proxyCreds(db, s, tenantID)
			if err != nil {
				return writeErr(cmd, err)
			}
			resp := proxy.NewClient(proxyURL).AssetTypes(cmd.Context(), creds)
			if !resp.Success {
				return writeErr(cmd, fmt.Errorf("asset types: %s", resp.Message))
			}
			return writeOut(cmd, app, map[string]any{"data": resp.AssetTypes})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Stored tenant id (default: default tenant)")
	cmd.Flags().StringVar(&proxyURL, "proxy", defaultProxyURL, "Proxy base URL")
	return cmd
}

func newAssetsListCmd(app *App) *cobra.Command {
	var tenantID, proxyURL, typeID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upstream assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			creds, err := proxyCreds(db, s, tenantID)
			if err != nil {
				return writeErr(cmd, err)
			}
			resp := proxy.NewClient(proxyURL).Assets(cmd.Context(), creds, typeID)
			if !resp.Success {
				return writeErr(cmd, fmt.Errorf("assets: %s", resp.Message))
			}
			return writeOut(cmd, app, map[string]any{"data": resp.Assets})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Stored tenant id (default: default tenant)")
	cmd.Flags().StringVar(&proxyURL, "proxy", defaultProxyURL, "Proxy base URL")
	cmd.Flags().StringVar(&typeID, "type", "", "Filter by asset type id")
	return cmd
}

func newAssetsSearchCmd(app *App) *cobra.Command {
	var tenantID, proxyURL string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search upstream assets by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			creds, err := proxyCreds(db, s, tenantID)
			if err != nil {
				return writeErr(cmd, err)
			}
			resp := proxy.NewClient(proxyURL).SearchAssets(cmd.Context(), creds, args[0])
			if !resp.Success {
				return writeErr(cmd, fmt.Errorf("search: %s", resp.Message))
			}
			return writeOut(cmd, app, map[string]any{"data": resp.Assets})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Stored tenant id (default: default tenant)")
	cmd.Flags().StringVar(&proxyURL, "proxy", defaultProxyURL, "Proxy base URL")
	return cmd
}

func newAssetsLoadCmd(app *App) *cobra.Command {
	var tenantID, proxyURL, jobID string

	cmd := &cobra.Command{
		Use:   "load <asset-id>",
		Short: "Load an asset into the active job as a group with tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			creds, err := proxyCreds(db, s, tenantID)
			if err != nil {
				return writeErr(cmd, err)
			}
			resp := proxy.NewClient(proxyURL).LoadAsset(cmd.Context(), creds, args[0])
			if !resp.Success || resp.Group == nil {
				return writeErr(cmd, fmt.Errorf("load: %s", resp.Message))
			}

			// Nothing was committed before this point; a failed call above
			// leaves the job untouched.
			g, _ := mutate.AddGroup(db, job.ID, resp.Group.Name, creds.TenantID)
			for _, as := range resp.Group.Aspects {
				a, ok := mutate.AddAspect(db, job.ID, g.ID, as.Name)
				if !ok {
					continue
				}
				for _, trk := range as.Tracks {
					mutate.AddTrack(db, job.ID, a.ID, trk.Name, trk.Unit, trk.DataType)
				}
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			g, _ = job.FindGroup(g.ID)
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Stored tenant id (default: default tenant)")
	cmd.Flags().StringVar(&proxyURL, "proxy", defaultProxyURL, "Proxy base URL")
	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	return cmd
}
