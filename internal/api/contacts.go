package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/tnslabs/waconsole/internal/apperrors"
	"github.com/tnslabs/waconsole/internal/models"
)

// rawContact covers every field-name variant the backend's endpoints have
// been seen emitting for the same record shape.
type rawContact struct {
	ID         flexString `json:"id"`
	ContactID  flexString `json:"contact_id"`
	CustomerID flexString `json:"customer_id"`

	Name     string `json:"name"`
	FullName string `json:"full_name"`

	Phone        string `json:"phone"`
	PhoneNumber  string `json:"phone_number"`
	MSISDN       string `json:"msisdn"`
	ContactPhone string `json:"contact_phone"`

	LastMessage      string `json:"last_message"`
	LastMessageCamel string `json:"lastMessage"`

	LastMessageTime      flexString `json:"last_message_time"`
	LastMessageTimeCamel flexString `json:"lastMessageTime"`

	LastSeen   flexString `json:"last_seen"`
	LastSeenAt flexString `json:"last_seen_at"`
	LastActive flexString `json:"last_active"`

	AssignedAgent     string `json:"assigned_agent"`
	AgentName         string `json:"agent_name"`
	AssignedTo        string `json:"assigned_to"`
	AssignedAgentName string `json:"assigned_agent_name"`
	Agent             *struct {
		Name string `json:"name"`
	} `json:"agent"`
}

// toModel flattens the variants into one shape. last_seen deliberately
// never feeds LastMessageTime; they are distinct facts and conflating
// them made contact rows show phantom message times.
func (r rawContact) toModel() models.Contact {
	agent := firstNonEmpty(r.AssignedAgent, r.AgentName, r.AssignedTo, r.AssignedAgentName)
	if agent == "" && r.Agent != nil {
		agent = r.Agent.Name
	}
	return models.Contact{
		ID:              firstNonEmpty(r.ID.String(), r.ContactID.String(), r.CustomerID.String()),
		Name:            firstNonEmpty(r.Name, r.FullName),
		PhoneNumber:     firstNonEmpty(r.Phone, r.PhoneNumber, r.MSISDN, r.ContactPhone),
		LastMessage:     firstNonEmpty(r.LastMessageCamel, r.LastMessage),
		LastMessageTime: firstNonEmpty(r.LastMessageTimeCamel.String(), r.LastMessageTime.String()),
		LastSeen:        firstNonEmpty(r.LastSeen.String(), r.LastSeenAt.String(), r.LastActive.String()),
		AssignedAgent:   agent,
	}
}

// Contacts lists the contacts the session may see; the backend filters by
// role (admins get the whole workspace, agents their assignments).
func (c *Client) Contacts(ctx context.Context) ([]models.Contact, error) {
	var out struct {
		envelope
		Contacts []rawContact `json:"contacts"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "getContacts.php", nil, nil, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, envelopeError("getContacts.php", out.envelope)
	}

	contacts := make([]models.Contact, 0, len(out.Contacts))
	for _, raw := range out.Contacts {
		contacts = append(contacts, raw.toModel())
	}
	return contacts, nil
}

// MergeKnownTimes carries a previously-known LastMessageTime forward when
// a refresh response omits it, so partial payloads don't blank out rows.
func MergeKnownTimes(prev, next []models.Contact) []models.Contact {
	if len(prev) == 0 {
		return next
	}
	known := make(map[string]string, len(prev))
	for _, contact := range prev {
		if contact.LastMessageTime != "" {
			known[contact.ID] = contact.LastMessageTime
		}
	}
	for i := range next {
		if next[i].LastMessageTime == "" {
			next[i].LastMessageTime = known[next[i].ID]
		}
	}
	return next
}

var phonePattern = regexp.MustCompile(`^\+91[0-9]{10}$`)

// ValidatePhoneNumber enforces the workspace's +91 plus ten digits rule.
func ValidatePhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// CreateContact creates a contact; name may be empty. A duplicate phone
// number surfaces as *apperrors.DuplicateContactError carrying the
// existing record.
func (c *Client) CreateContact(ctx context.Context, name, phoneNumber string) (models.Contact, error) {
	payload := map[string]any{"phone_number": phoneNumber}
	if name != "" {
		payload["name"] = name
	} else {
		payload["name"] = nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return models.Contact{}, fmt.Errorf("createContact.php: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("createContact.php", nil), bytes.NewReader(data))
	if err != nil {
		return models.Contact{}, fmt.Errorf("createContact.php: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Contact{}, fmt.Errorf("createContact.php: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Contact{}, fmt.Errorf("createContact.php: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		var conflict struct {
			ExistingContact rawContact `json:"existing_contact"`
		}
		if json.Unmarshal(body, &conflict) == nil && conflict.ExistingContact.toModel().ID != "" {
			return models.Contact{}, &apperrors.DuplicateContactError{
				Existing: conflict.ExistingContact.toModel(),
			}
		}
		return models.Contact{}, fmt.Errorf("createContact.php: duplicate contact: %w", apperrors.ErrBackend)
	}
	if resp.StatusCode >= 400 {
		return models.Contact{}, c.statusError("createContact.php", resp.StatusCode, body)
	}

	var out struct {
		envelope
		Contact rawContact `json:"contact"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return models.Contact{}, fmt.Errorf("createContact.php: failed to decode response: %w", err)
	}
	if !out.OK {
		return models.Contact{}, envelopeError("createContact.php", out.envelope)
	}
	return out.Contact.toModel(), nil
}

// AssignAgent assigns an agent to a customer. Callers refresh the contact
// list afterwards; there is no optimistic update on this path.
func (c *Client) AssignAgent(ctx context.Context, customerID, agentID string) error {
	var out envelope
	body := map[string]string{"customer_id": customerID, "agent_id": agentID}
	if err := c.doJSON(ctx, http.MethodPost, "assignAgent.php", nil, body, &out); err != nil {
		return err
	}
	if !out.OK {
		return envelopeError("assignAgent.php", out)
	}
	return nil
}

// DeleteAssignment unassigns whatever agent is attached to the customer.
// The backend models this as a GET with a query parameter.
func (c *Client) DeleteAssignment(ctx context.Context, customerID string) error {
	query := url.Values{"customer_id": {customerID}}
	var out envelope
	if err := c.doJSON(ctx, http.MethodGet, "deleteAssignment.php", query, nil, &out); err != nil {
		return err
	}
	if !out.OK {
		return envelopeError("deleteAssignment.php", out)
	}
	return nil
}
