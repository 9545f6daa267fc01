package graphql

import (
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cafe.GO/api"
	"cafe.GO/core/profile"
	_ "cafe.GO/custom"
	graphqlpkg "cafe.GO/graphql"
	"cafe.GO/graphqlserver"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

func RegisterGraphQLRoutes(e *echo.Echo, d *api.Deps) {
	schema, err := graphqlserver.NewSchema(d.Catalog, d.Hub)
	if err != nil {
		d.Logger.Fatal("graphql schema", zap.Error(err))
	}
	RegisterGraphQLRoutesWithSchema(e, schema)
}

// RegisterGraphQLRoutesWithSchema registers /graphql and /playground for schema.
func RegisterGraphQLRoutesWithSchema(e *echo.Echo, schema *gql.Schema) {
	h := echo.WrapHandler(graphqlserver.Handler(schema))
	e.POST("/graphql", withProfile(h))
	e.GET("/graphql", withProfile(h))
	e.GET("/playground", func(c echo.Context) error {
		return c.HTML(http.StatusOK, playgroundHTML)
	})
}

// withProfile copies the visitor profile into the resolver context.
func withProfile(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := profile.ID(c); id != "" {
			r := c.Request()
			c.SetRequest(r.WithContext(graphqlpkg.WithProfile(r.Context(), id)))
		}
		return next(c)
	}
}

const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
	<title>GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		GraphQLPlayground.init({ endpoint: '/graphql' });
	})</script>
</body>
</html>`
