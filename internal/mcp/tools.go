package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

// registerTools registers all directory tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	srv.AddTool(
		mcp.NewTool("jambearum_list_umkm",
			mcp.WithDescription(
				"List active local businesses (UMKM) of Desa Jambearum, newest first. "+
					"Filter by category (e.g. 'Pertanian', 'Kerajinan', 'Produk Olahan'), "+
					"by dusun (hamlet), or with a free-text search over name, description and owner.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("category",
				mcp.Description("Exact category to match"),
			),
			mcp.WithString("dusun",
				mcp.Description("Exact dusun (hamlet) to match"),
			),
			mcp.WithString("q",
				mcp.Description("Case-insensitive search text"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of businesses to return (default 25, max 100)"),
			),
		),
		s.handleListUMKM,
	)

	srv.AddTool(
		mcp.NewTool("jambearum_get_umkm",
			mcp.WithDescription(
				"Get the full details of one active business, including its products, "+
					"owner, phone number and address.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Business ID as returned by jambearum_list_umkm"),
			),
		),
		s.handleGetUMKM,
	)

	srv.AddTool(
		mcp.NewTool("jambearum_list_homepage_images",
			mcp.WithDescription(
				"List the active images shown on the village homepage, ordered by "+
					"section and position. Sections include 'hero', 'gallery' and 'wisata'.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("section",
				mcp.Description("Only return images for this section"),
			),
		),
		s.handleListHomepageImages,
	)

	srv.AddTool(
		mcp.NewTool("jambearum_contact",
			mcp.WithDescription(
				"Get the village WhatsApp contact number in international format "+
					"(digits only, starting with the country code) and a wa.me link.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleContact,
	)
}

// umkmSummary is the compact listing view.
type umkmSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Dusun    string   `json:"dusun"`
	Owner    string   `json:"owner"`
	Products []string `json:"products"`
}

func (s *MCPServer) handleListUMKM(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	filter, limit := umkmListArgs(request)
	list, err := s.store.ListUMKM(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "mcp list umkm", "error", err)
		return toolError("Failed to list businesses: %v", err)
	}

	total := len(list)
	if len(list) > limit {
		list = list[:limit]
	}
	items := make([]umkmSummary, len(list))
	for i, u := range list {
		items[i] = summarizeUMKM(u)
	}

	return successJSON(map[string]interface{}{
		"businesses": items,
		"count":      len(items),
		"total":      total,
	})
}

func (s *MCPServer) handleGetUMKM(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	id, err := requireString(request, "id")
	if err != nil {
		return toolError("%v. Use jambearum_list_umkm to find business IDs.", err)
	}

	u, err := s.store.GetActiveUMKM(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return toolError("Business %q not found. Use jambearum_list_umkm to find business IDs.", id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "mcp get umkm", "error", err, "id", id)
		return toolError("Failed to load business: %v", err)
	}
	return successJSON(u)
}

// imageSummary hides admin-only fields.
type imageSummary struct {
	Section     string  `json:"section"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	AltText     string  `json:"altText"`
	SortOrder   int     `json:"sortOrder"`
}

func (s *MCPServer) handleListHomepageImages(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	images, err := s.store.ListHomepageImages(ctx, optionalString(request, "section"), true)
	if err != nil {
		s.logger.ErrorContext(ctx, "mcp list homepage images", "error", err)
		return toolError("Failed to list images: %v", err)
	}

	items := make([]imageSummary, len(images))
	for i, img := range images {
		items[i] = imageSummary{
			Section:     img.Section,
			Title:       img.Title,
			Description: img.Description,
			ImageURL:    img.ImageURL,
			AltText:     img.AltText,
			SortOrder:   img.SortOrder,
		}
	}
	return successJSON(map[string]interface{}{
		"images": items,
		"count":  len(items),
	})
}

func (s *MCPServer) handleContact(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	number, err := s.store.GetSetting(ctx, model.SettingAdminWhatsApp)
	switch {
	case errors.Is(err, store.ErrNotFound) || (err == nil && number == ""):
		number = model.DefaultWhatsApp
	case err != nil:
		s.logger.ErrorContext(ctx, "mcp contact", "error", err)
		return toolError("Failed to load contact: %v", err)
	}

	return successJSON(map[string]string{
		"whatsapp": number,
		"link":     fmt.Sprintf("https://wa.me/%s", number),
	})
}
