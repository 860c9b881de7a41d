package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableOwners                      = "cp_owners"
	TableProducts                    = "cp_products"
	TableProductAttributes           = "cp_product_attributes"
	TableProductProvidedProducts     = "cp_product_provided_products"
	TableProductDependentProducts    = "cp_product_dependent_products"
	TableContents                    = "cp_contents"
	TableContentModifiedProducts     = "cp_content_modified_products"
	TableProductContents             = "cp_product_contents"
	TableOwnerProducts               = "cp_owner_products"
	TablePools                       = "cp_pools"
	TablePoolAttributes              = "cp_pool_attributes"
	TablePoolProvidedProducts        = "cp_pool_provided_products"
	TablePoolDerivedProvidedProducts = "cp_pool_derived_provided_products"
	TableConsumers                   = "cp_consumers"
	TableConsumerFacts               = "cp_consumer_facts"
	TableConsumerGuests              = "cp_consumer_guests"
	TableEntitlements                = "cp_entitlements"
	TableAsyncJobs                   = "cp_async_jobs"
	TableCasbinRules                 = "cp_casbin_rules"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
)
