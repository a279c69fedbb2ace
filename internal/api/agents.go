package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tnslabs/waconsole/internal/models"
)

type rawAgent struct {
	ID      flexString `json:"id"`
	AgentID flexString `json:"agent_id"`
	UserID  flexString `json:"user_id"`

	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r rawAgent) toModel(index int) models.Agent {
	id := firstNonEmpty(r.ID.String(), r.AgentID.String(), r.UserID.String(), r.Email)
	if id == "" {
		id = fmt.Sprintf("agent-%d", index)
	}
	name := firstNonEmpty(r.Name, r.FullName, r.Username, r.Email)
	if name == "" {
		name = "Unnamed agent"
	}
	return models.Agent{ID: id, Name: name, Email: r.Email}
}

// Agents lists the workspace's agents. Some deployments return the list
// under "agents", others under "data".
func (c *Client) Agents(ctx context.Context) ([]models.Agent, error) {
	var out struct {
		envelope
		Agents []rawAgent `json:"agents"`
		Data   []rawAgent `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "getAgent.php", nil, nil, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, envelopeError("getAgent.php", out.envelope)
	}

	raws := out.Agents
	if len(raws) == 0 {
		raws = out.Data
	}
	agents := make([]models.Agent, 0, len(raws))
	for i, raw := range raws {
		agents = append(agents, raw.toModel(i))
	}
	return agents, nil
}
