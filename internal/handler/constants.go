package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit routes.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamField is the profile field parameter pattern.
	RouteParamField = "/{field}"
	// RouteParamName is the job name parameter pattern.
	RouteParamName = "/{name}"

	// RouteEvents is the events route, public and admin.
	RouteEvents = "/events"
	// RouteUpdates is the updates route, public and admin.
	RouteUpdates = "/updates"
	// RouteCreators is the content creators admin route.
	RouteCreators = "/creators"
	// RouteProfile is the profile admin route.
	RouteProfile = "/profile"
	// RouteActivity is the activity log admin route.
	RouteActivity = "/activity"
	// RouteJobs is the scheduled jobs route under activity.
	RouteJobs = "/jobs"

	// RouteAdmin is the admin panel root.
	RouteAdmin = "/admin"
	// RouteAdminLogin is the admin login route.
	RouteAdminLogin = "/admin/login"
	// RouteLogin is the content creator login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteLanguage is the language switch route.
	RouteLanguage = "/language"

	// RouteEventsID is the events ID route pattern.
	RouteEventsID = RouteEvents + RouteParamID
	// RouteUpdatesID is the updates ID route pattern.
	RouteUpdatesID = RouteUpdates + RouteParamID
	// RouteCreatorsID is the creators ID route pattern.
	RouteCreatorsID = RouteCreators + RouteParamID
)

const (
	redirectAdmin         = RouteAdmin
	redirectAdminEvents   = RouteAdmin + RouteEvents
	redirectAdminUpdates  = RouteAdmin + RouteUpdates
	redirectAdminCreators = RouteAdmin + RouteCreators
	redirectAdminProfile  = RouteAdmin + RouteProfile
	redirectAdminActivity = RouteAdmin + RouteActivity
	redirectPublicEvents  = RouteEvents
)

// Flash message types.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
	flashTypeWarning = "warning"
	flashTypeInfo    = "info"
)

// Form field names.
const (
	fieldTitle           = "title"
	fieldDescription     = "description"
	fieldType            = "type"
	fieldImage           = "image"
	fieldAttachment      = "attachment"
	fieldEmail           = "email"
	fieldPassword        = "password"
	fieldConfirmPassword = "confirm_password"
	fieldUsername        = "username"
	fieldPhone           = "phone"
	fieldLang            = "lang"
	fieldNext            = "next"
)

// Query parameters.
const (
	paramQuery   = "q"
	paramShow    = "show"
	paramExpand  = "expand"
	paramBackup  = "backup"
	paramRemoved = "removed"
)

// Utility constants used by main.go.
const (
	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
	// ActivityPerPage is the page size of the activity log.
	ActivityPerPage = 25
)
