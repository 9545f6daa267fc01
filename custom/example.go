// Package custom shows how to extend the storefront through the registries.
// It is imported for side effects by the server and the CLI.
package custom

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"cafe.GO/api"
	"cafe.GO/cmd"
	"cafe.GO/cron"
	gqlregistry "cafe.GO/graphql/registry"
	"cafe.GO/model/catalog"
)

func init() {
	// GraphQL extension: { _extension(name: "ping") }
	gqlregistry.Register("ping", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{"pong": "ok"}, nil
	})

	// GraphQL extension: { _extension(name: "menu") } lists the menu sections.
	gqlregistry.Register("menu", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"categories": catalog.Categories, "currencies": catalog.Currencies}, nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:hello",
		Short: "Custom command example",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), "Hello from the cafe")
		},
	})

	// Cron job
	cron.Register("customping", "@every 1h", func(args ...string) {
		fmt.Println("Custom cron: ping at", args)
	})

	// HTTP route
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"pong": "ok"})
	})
}
