package api

import (
	"context"
	"net/http"

	"github.com/tnslabs/waconsole/internal/models"
)

type rawTemplate struct {
	ID        flexString `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	IsOwn     bool       `json:"is_own"`
	IsShared  bool       `json:"is_shared"`
	CreatedBy string     `json:"created_by"`
}

func (r rawTemplate) toModel() models.Template {
	return models.Template{
		ID:        r.ID.String(),
		Title:     r.Title,
		Content:   r.Content,
		IsOwn:     r.IsOwn,
		IsShared:  r.IsShared,
		CreatedBy: r.CreatedBy,
	}
}

// Templates fetches the reply templates visible to the session. The
// picker calls this every time it opens; nothing is cached in between.
func (c *Client) Templates(ctx context.Context) ([]models.Template, error) {
	var out struct {
		envelope
		Templates []rawTemplate `json:"templates"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "getTemplates.php", nil, nil, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, envelopeError("getTemplates.php", out.envelope)
	}

	templates := make([]models.Template, 0, len(out.Templates))
	for _, raw := range out.Templates {
		templates = append(templates, raw.toModel())
	}
	return templates, nil
}

// CreateTemplate saves a new reply template.
func (c *Client) CreateTemplate(ctx context.Context, title, content string, shared bool) (models.Template, error) {
	var out struct {
		envelope
		Template rawTemplate `json:"template"`
	}
	body := map[string]any{"title": title, "content": content, "is_shared": shared}
	if err := c.doJSON(ctx, http.MethodPost, "createTemplate.php", nil, body, &out); err != nil {
		return models.Template{}, err
	}
	if !out.OK {
		return models.Template{}, envelopeError("createTemplate.php", out.envelope)
	}
	return out.Template.toModel(), nil
}

// DeleteTemplate removes a template by id.
func (c *Client) DeleteTemplate(ctx context.Context, templateID string) error {
	var out envelope
	body := map[string]string{"template_id": templateID}
	if err := c.doJSON(ctx, http.MethodDelete, "deleteTemplate.php", nil, body, &out); err != nil {
		return err
	}
	if !out.OK {
		return envelopeError("deleteTemplate.php", out)
	}
	return nil
}
