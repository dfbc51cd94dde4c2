package cli

import (
	"strings"
	"time"

	"syncline/internal/model"

	"github.com/spf13/cobra"
)

func newTenantsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Stored tenant credential commands",
	}
	cmd.AddCommand(newTenantsAddCmd(app))
	cmd.AddCommand(newTenantsListCmd(app))
	cmd.AddCommand(newTenantsUseCmd(app))
	cmd.AddCommand(newTenantsRemoveCmd(app))
	return cmd
}

// tenantRow is the list shape: secrets never leave the store through list.
type tenantRow struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	ClientID  string    `json:"clientId"`
	Region    string    `json:"region,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed,omitempty"`
}

func newTenantsAddCmd(app *App) *cobra.Command {
	var tenantID, clientID, clientSecret, region, color string
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store tenant credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t := model.Tenant{
				ID:           db.NextID("tn"),
				TenantID:     strings.TrimSpace(tenantID),
				ClientID:     strings.TrimSpace(clientID),
				ClientSecret: clientSecret,
				Region:       strings.TrimSpace(region),
				Color:        strings.TrimSpace(color),
				IsDefault:    makeDefault || len(db.Tenants) == 0,
				CreatedAt:    time.Now().UTC(),
			}
			if t.IsDefault {
				for i := range db.Tenants {
					db.Tenants[i].IsDefault = false
				}
			}
			db.Tenants = append(db.Tenants, t)
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tenantRow{
				ID: t.ID, TenantID: t.TenantID, ClientID: t.ClientID,
				Region: t.Region, IsDefault: t.IsDefault, CreatedAt: t.CreatedAt,
			}})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant-id", "", "Upstream tenant id")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	cmd.Flags().StringVar(&region, "region", "", "Gateway region (e.g. eu1)")
	cmd.Flags().StringVar(&color, "color", "", "Display color (hex)")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Make this the default tenant")
	_ = cmd.MarkFlagRequired("tenant-id")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("client-secret")
	return cmd
}

func newTenantsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tenants (without secrets)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rows := make([]tenantRow, 0, len(db.Tenants))
			for _, t := range db.Tenants {
				rows = append(rows, tenantRow{
					ID: t.ID, TenantID: t.TenantID, ClientID: t.ClientID,
					Region: t.Region, IsDefault: t.IsDefault,
					CreatedAt: t.CreatedAt, LastUsed: t.LastUsed,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
	return cmd
}

func newTenantsUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <tenant-id>",
		Short: "Make a stored tenant the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := db.FindTenant(args[0]); !ok {
				return writeErr(cmd, errNotFound("tenant", args[0]))
			}
			for i := range db.Tenants {
				db.Tenants[i].IsDefault = db.Tenants[i].ID == args[0]
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"defaultTenantId": args[0]}})
		},
	}
	return cmd
}

func newTenantsRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <tenant-id>",
		Short: "Remove stored tenant credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			removed := false
			for i := range db.Tenants {
				if db.Tenants[i].ID == args[0] {
					db.Tenants = append(db.Tenants[:i], db.Tenants[i+1:]...)
					removed = true
					break
				}
			}
			if !removed {
				return writeErr(cmd, errNotFound("tenant", args[0]))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
	return cmd
}
