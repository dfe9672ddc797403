package openapi

import (
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

// CookieScheme is the name of the admin session security scheme.
const CookieScheme = "adminCookie"

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func arrayOf(item *openapi3.SchemaRef) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: item}}
}

var (
	umkmWritable = []field{
		{Name: "name", Type: tString, Required: true},
		{Name: "description", Type: tString, Nullable: true},
		{Name: "category", Type: tString, Required: true, Desc: "Pertanian, Kerajinan, Produk Olahan, ..."},
		{Name: "owner", Type: tString, Required: true},
		{Name: "phone", Type: tString, Nullable: true},
		{Name: "address", Type: tString, Nullable: true},
		{Name: "dusun", Type: tString, Required: true, Desc: "Hamlet the business belongs to."},
		{Name: "products", Type: tStrings},
		{Name: "image", Type: tURI, Nullable: true},
	}
	imageWritable = []field{
		{Name: "section", Type: tString, Required: true, Desc: "hero, gallery, wisata, ..."},
		{Name: "title", Type: tString, Nullable: true},
		{Name: "description", Type: tString, Nullable: true},
		{Name: "imageUrl", Type: tURI, Required: true},
		{Name: "altText", Type: tString, Required: true},
		{Name: "isActive", Type: tBool},
		{Name: "sortOrder", Type: tInt},
	}
	recordMeta = []field{
		{Name: "id", Type: tUUID, Required: true},
		{Name: "isActive", Type: tBool, Required: true},
		{Name: "createdAt", Type: tDateTime, Required: true},
		{Name: "updatedAt", Type: tDateTime, Required: true},
	}
)

func componentSchemas() openapi3.Schemas {
	umkm := append(append([]field{}, recordMeta...), umkmWritable...)
	image := append(append([]field{}, recordMeta...), imageWritable...)

	return openapi3.Schemas{
		"Envelope": objectSchema(
			field{Name: "success", Type: tBool, Required: true},
			field{Name: "message", Type: tString},
			field{Name: "count", Type: tInt},
			field{Name: "affected", Type: tInt64},
		),
		"UMKM":                objectSchema(umkm...),
		"UMKMCreate":          objectSchema(umkmWritable...),
		"UMKMUpdate":          objectSchema(append(optional(umkmWritable), field{Name: "isActive", Type: tBool})...),
		"HomepageImage":       objectSchema(image...),
		"HomepageImageCreate": objectSchema(imageWritable...),
		"HomepageImageUpdate": objectSchema(optional(imageWritable)...),
		"PublicHomepageImage": objectSchema(
			field{Name: "id", Type: tUUID, Required: true},
			field{Name: "section", Type: tString, Required: true},
			field{Name: "title", Type: tString, Nullable: true},
			field{Name: "description", Type: tString, Nullable: true},
			field{Name: "imageUrl", Type: tURI, Required: true},
			field{Name: "altText", Type: tString, Required: true},
			field{Name: "sortOrder", Type: tInt, Required: true},
		),
		"User": objectSchema(
			field{Name: "id", Type: tUUID, Required: true},
			field{Name: "email", Type: tEmail, Required: true},
			field{Name: "name", Type: tString, Nullable: true},
			field{Name: "createdAt", Type: tDateTime, Required: true},
			field{Name: "updatedAt", Type: tDateTime, Required: true},
		),
		"UserCreate": objectSchema(
			field{Name: "email", Type: tEmail, Required: true},
			field{Name: "name", Type: tString, Nullable: true},
		),
		"Stats": objectSchema(
			field{Name: "totalUMKM", Type: tInt, Required: true},
			field{Name: "activeUMKM", Type: tInt, Required: true},
			field{Name: "totalUsers", Type: tInt, Required: true},
			field{Name: "totalAdmins", Type: tInt, Required: true},
			field{Name: "lastUpdated", Type: tDateTime, Required: true},
		),
		"SessionUser": objectSchema(
			field{Name: "username", Type: tString, Required: true},
			field{Name: "role", Type: tString, Required: true},
			field{Name: "loginTime", Type: tInt64, Desc: "Login time in epoch milliseconds."},
		),
		"LoginRequest": objectSchema(
			field{Name: "username", Type: tString, Required: true},
			field{Name: "password", Type: tString, Required: true},
		),
		"BulkRequest": &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"action", "ids"},
			Properties: openapi3.Schemas{
				"action": &openapi3.SchemaRef{Value: &openapi3.Schema{
					Type: &openapi3.Types{"string"},
					Enum: []interface{}{"activate", "deactivate", "delete"},
				}},
				"ids": arrayOf(&openapi3.SchemaRef{Value: typeSchema(tUUID, false)}),
			},
		}},
		"WhatsApp": &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"whatsapp"},
			Properties: openapi3.Schemas{
				"whatsapp": &openapi3.SchemaRef{Value: &openapi3.Schema{
					Type:    &openapi3.Types{"string"},
					Pattern: `^\d{8,15}$`,
				}},
			},
		}},
		"UploadResult": objectSchema(
			field{Name: "filename", Type: tString, Required: true},
			field{Name: "originalName", Type: tString, Required: true},
			field{Name: "size", Type: tInt64, Required: true},
			field{Name: "type", Type: tString, Required: true},
			field{Name: "url", Type: tURI, Required: true},
		),
	}
}

// envelope wraps data in the success envelope under key.
func envelope(key string, data *openapi3.SchemaRef) *openapi3.SchemaRef {
	s := &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref("Envelope")}}
	if data != nil {
		s.AllOf = append(s.AllOf, &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: openapi3.Schemas{key: data},
		}})
	}
	return &openapi3.SchemaRef{Value: s}
}

func newResponses(status, description string, schema *openapi3.SchemaRef, errors ...int) *openapi3.Responses {
	responses := openapi3.NewResponses()
	responses.Set(status, &openapi3.ResponseRef{Value: &openapi3.Response{
		Description: &description,
		Content:     openapi3.NewContentWithJSONSchemaRef(schema),
	}})

	errorDesc := map[int]string{
		400: "Invalid input",
		401: "Not authenticated as admin",
		404: "Not found",
		409: "Already exists",
		429: "Too many attempts",
		500: "Internal server error",
	}
	for _, code := range append(errors, 500) {
		desc := errorDesc[code]
		responses.Set(strconv.Itoa(code), &openapi3.ResponseRef{Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(ref("Envelope")),
		}})
	}
	return responses
}

func jsonBody(schema string) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
		Required: true,
		Content:  openapi3.NewContentWithJSONSchemaRef(ref(schema)),
	}}
}

func queryParam(name, desc string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:        name,
		In:          openapi3.ParameterInQuery,
		Description: desc,
		Schema:      &openapi3.SchemaRef{Value: typeSchema(tString, false)},
	}}
}

func idParam() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:     "id",
		In:       openapi3.ParameterInPath,
		Required: true,
		Schema:   &openapi3.SchemaRef{Value: typeSchema(tUUID, false)},
	}}
}

// operation describes one route.
type operation struct {
	method  string
	path    string
	id      string
	tag     string
	summary string
	admin   bool
	params  openapi3.Parameters
	body    *openapi3.RequestBodyRef
	status  string
	result  *openapi3.SchemaRef
	errors  []int
}

func operations() []operation {
	filters := openapi3.Parameters{
		queryParam("category", "Exact category match."),
		queryParam("dusun", "Exact dusun match."),
		queryParam("q", "Case-insensitive search over name, description and owner."),
	}
	section := openapi3.Parameters{queryParam("section", "Only images in this section.")}
	byID := openapi3.Parameters{idParam()}

	uploadBody := &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
		Required: true,
		Content: openapi3.Content{"multipart/form-data": &openapi3.MediaType{
			Schema: &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type:     &openapi3.Types{"object"},
				Required: []string{"file"},
				Properties: openapi3.Schemas{
					"file": &openapi3.SchemaRef{Value: &openapi3.Schema{
						Type:        &openapi3.Types{"string"},
						Format:      "binary",
						Description: "JPEG, PNG, WebP or GIF up to 5 MB.",
					}},
				},
			}},
		}},
	}}

	return []operation{
		// Session
		{method: "POST", path: "/api/admin/login", id: "adminLogin", tag: "session", summary: "Log in and receive the session cookie",
			body: jsonBody("LoginRequest"), status: "200", result: envelope("user", ref("SessionUser")), errors: []int{400, 401, 429}},
		{method: "POST", path: "/api/admin/logout", id: "adminLogout", tag: "session", summary: "Clear the session cookie",
			status: "200", result: envelope("", nil)},
		{method: "GET", path: "/api/admin/me", id: "adminMe", tag: "session", summary: "Current session identity",
			status: "200", result: envelope("user", ref("SessionUser")), errors: []int{401}},

		// Admin
		{method: "GET", path: "/api/admin/stats", id: "adminStats", tag: "admin", summary: "Dashboard counters", admin: true,
			status: "200", result: envelope("data", ref("Stats"))},
		{method: "GET", path: "/api/admin/umkm", id: "adminListUMKM", tag: "admin", summary: "List all UMKM including inactive", admin: true,
			params: filters, status: "200", result: envelope("data", arrayOf(ref("UMKM")))},
		{method: "POST", path: "/api/admin/umkm", id: "adminCreateUMKM", tag: "admin", summary: "Create an active UMKM", admin: true,
			body: jsonBody("UMKMCreate"), status: "201", result: envelope("data", ref("UMKM")), errors: []int{400}},
		{method: "GET", path: "/api/admin/umkm/{id}", id: "adminGetUMKM", tag: "admin", summary: "Get any UMKM", admin: true,
			params: byID, status: "200", result: envelope("data", ref("UMKM")), errors: []int{404}},
		{method: "PATCH", path: "/api/admin/umkm/{id}", id: "adminUpdateUMKM", tag: "admin", summary: "Partially update a UMKM", admin: true,
			params: byID, body: jsonBody("UMKMUpdate"), status: "200", result: envelope("data", ref("UMKM")), errors: []int{400, 404}},
		{method: "DELETE", path: "/api/admin/umkm/{id}", id: "adminDeleteUMKM", tag: "admin", summary: "Delete a UMKM", admin: true,
			params: byID, status: "200", result: envelope("", nil), errors: []int{404}},
		{method: "POST", path: "/api/admin/umkm/bulk", id: "adminBulkUMKM", tag: "admin", summary: "Activate, deactivate or delete many UMKM", admin: true,
			body: jsonBody("BulkRequest"), status: "200", result: envelope("", nil), errors: []int{400}},
		{method: "GET", path: "/api/admin/homepage-images", id: "adminListHomepageImages", tag: "admin", summary: "List all homepage images", admin: true,
			params: section, status: "200", result: envelope("data", arrayOf(ref("HomepageImage")))},
		{method: "POST", path: "/api/admin/homepage-images", id: "adminCreateHomepageImage", tag: "admin", summary: "Create a homepage image", admin: true,
			body: jsonBody("HomepageImageCreate"), status: "201", result: envelope("data", ref("HomepageImage")), errors: []int{400}},
		{method: "GET", path: "/api/admin/homepage-images/{id}", id: "adminGetHomepageImage", tag: "admin", summary: "Get a homepage image", admin: true,
			params: byID, status: "200", result: envelope("data", ref("HomepageImage")), errors: []int{404}},
		{method: "PATCH", path: "/api/admin/homepage-images/{id}", id: "adminUpdateHomepageImage", tag: "admin", summary: "Partially update a homepage image", admin: true,
			params: byID, body: jsonBody("HomepageImageUpdate"), status: "200", result: envelope("data", ref("HomepageImage")), errors: []int{400, 404}},
		{method: "DELETE", path: "/api/admin/homepage-images/{id}", id: "adminDeleteHomepageImage", tag: "admin", summary: "Delete a homepage image", admin: true,
			params: byID, status: "200", result: envelope("", nil), errors: []int{404}},
		{method: "GET", path: "/api/admin/settings/whatsapp", id: "adminGetWhatsApp", tag: "admin", summary: "Configured WhatsApp number", admin: true,
			status: "200", result: envelope("data", ref("WhatsApp"))},
		{method: "POST", path: "/api/admin/settings/whatsapp", id: "adminSetWhatsApp", tag: "admin", summary: "Set the WhatsApp number", admin: true,
			body: jsonBody("WhatsApp"), status: "200", result: envelope("data", ref("WhatsApp")), errors: []int{400}},
		{method: "POST", path: "/api/admin/upload", id: "adminUpload", tag: "admin", summary: "Upload an image", admin: true,
			body: uploadBody, status: "200", result: envelope("data", ref("UploadResult")), errors: []int{400}},
		{method: "DELETE", path: "/api/admin/upload", id: "adminDeleteUpload", tag: "admin", summary: "Delete an uploaded image", admin: true,
			params: openapi3.Parameters{queryParam("url", "URL returned by the upload.")}, status: "200", result: envelope("", nil), errors: []int{400, 404}},

		// Public
		{method: "GET", path: "/api/umkm", id: "listUMKM", tag: "public", summary: "List active UMKM, newest first",
			params: filters, status: "200", result: envelope("data", arrayOf(ref("UMKM")))},
		{method: "GET", path: "/api/umkm/{id}", id: "getUMKM", tag: "public", summary: "Get an active UMKM",
			params: byID, status: "200", result: envelope("data", ref("UMKM")), errors: []int{404}},
		{method: "GET", path: "/api/homepage-images", id: "listHomepageImages", tag: "public", summary: "List active homepage images",
			params: section, status: "200", result: envelope("data", arrayOf(ref("PublicHomepageImage")))},
		{method: "GET", path: "/api/settings/public", id: "publicSettings", tag: "public", summary: "Public contact settings",
			status: "200", result: envelope("data", ref("WhatsApp"))},
		{method: "GET", path: "/api/users", id: "listUsers", tag: "public", summary: "List registered users",
			status: "200", result: envelope("data", arrayOf(ref("User")))},
		{method: "POST", path: "/api/users", id: "createUser", tag: "public", summary: "Register a user",
			body: jsonBody("UserCreate"), status: "201", result: envelope("data", ref("User")), errors: []int{400, 409}},
	}
}

// Generate describes the directory API served at baseURL.
func Generate(baseURL, version string) *openapi3.T {
	if version == "" {
		version = "dev"
	}
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Desa Jambearum API",
			Description: "Public directory of local businesses (UMKM) and homepage imagery for Desa Jambearum, plus the admin back-office API.",
			Version:     version,
		},
		Servers: openapi3.Servers{{URL: baseURL}},
		Tags: openapi3.Tags{
			{Name: "public", Description: "Visitor-facing endpoints. Only active records are returned."},
			{Name: "session", Description: "Admin login, logout and identity."},
			{Name: "admin", Description: "Back-office management. Requires the admin session cookie."},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = componentSchemas()
	components.SecuritySchemes = openapi3.SecuritySchemes{
		CookieScheme: &openapi3.SecuritySchemeRef{Value: &openapi3.SecurityScheme{
			Type:        "apiKey",
			In:          "cookie",
			Name:        "admin-token",
			Description: "HS256 session token set by POST /api/admin/login, valid for 24 hours.",
		}},
	}
	doc.Components = &components
	doc.Paths = openapi3.NewPaths()

	for _, op := range operations() {
		item := doc.Paths.Value(op.path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(op.path, item)
		}

		errs := op.errors
		if op.admin {
			errs = append([]int{401}, errs...)
		}
		o := &openapi3.Operation{
			Tags:        []string{op.tag},
			Summary:     op.summary,
			OperationID: op.id,
			Parameters:  op.params,
			RequestBody: op.body,
			Responses:   newResponses(op.status, op.summary, op.result, errs...),
		}
		if op.admin {
			o.Security = &openapi3.SecurityRequirements{{CookieScheme: {}}}
		}
		item.SetOperation(op.method, o)
	}
	return doc
}
