package registry

// Core keys for GlobalRegistry.
const (
	// Extension registries (cmd, cron, api, graphql)
	KeyRegistryCmd     = "registry:cmd"
	KeyRegistryCron    = "registry:cron"
	KeyRegistryAPI     = "registry:api"
	KeyRegistryRoutes  = "registry:routes"
	KeyRegistryGraphQL = "registry:graphql"

	// Storage codecs that upgrade legacy payloads, keyed per bridge key
	KeyRegistryMigrators = "registry:storage:migrators"
)
