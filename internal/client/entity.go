package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	dvhttp "github.com/fivetwenty-io/dataverse/internal/http"
	"github.com/fivetwenty-io/dataverse/internal/metadata"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// EntityClient implements dataverse.EntityClient for one entity set.
type EntityClient struct {
	client     *Client
	name       string
	entitySet  metadata.EntitySet
	entityType *metadata.EntityType
}

// newEntityClient resolves name against the metadata document when the
// client validates, so unknown entity sets fail before any request.
func newEntityClient(c *Client, name string) (*EntityClient, error) {
	handle := &EntityClient{
		client: c,
		name:   name,
	}

	if c.validate {
		set, entityType, err := c.metadata.ResolveEntity(name)
		if err != nil {
			return nil, err
		}

		handle.entitySet = set
		handle.entityType = entityType
	}

	return handle, nil
}

// Name implements dataverse.EntityClient.Name.
func (e *EntityClient) Name() string {
	return e.name
}

// Properties implements dataverse.EntityClient.Properties.
func (e *EntityClient) Properties() []string {
	if e.entityType == nil {
		return nil
	}

	return e.entityType.PropertyNames()
}

// EntityTypeName returns the resolved entity type, or "" without validation.
func (e *EntityClient) EntityTypeName() string {
	if e.entityType == nil {
		return ""
	}

	return e.entityType.Name
}

// QualifiedTypeName returns the namespace-qualified entity type declared by
// the entity set, or "" without validation.
func (e *EntityClient) QualifiedTypeName() string {
	return e.entitySet.EntityType
}

func (e *EntityClient) transport() *dvhttp.Client {
	return e.client.httpClient
}

func (e *EntityClient) recordPath(id string) (string, error) {
	key, err := FormatKey(id)
	if err != nil {
		return "", err
	}

	return e.name + "(" + key + ")", nil
}

func (e *EntityClient) validateProperties(data dataverse.Record) error {
	if e.entityType == nil {
		return nil
	}

	return metadata.ValidateProperties(e.name, e.entityType, data)
}

// Get implements dataverse.EntityClient.Get.
func (e *EntityClient) Get(ctx context.Context, id string) (dataverse.Record, error) {
	path, err := e.recordPath(id)
	if err != nil {
		return nil, err
	}

	resp, err := e.transport().Get(ctx, path, "")
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	return decodeRecord(resp, "parsing record")
}

// Create implements dataverse.EntityClient.Create.
func (e *EntityClient) Create(ctx context.Context, data dataverse.Record) (dataverse.Record, error) {
	err := e.validateProperties(data)
	if err != nil {
		return nil, err
	}

	resp, err := e.transport().Post(ctx, e.name, data)
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent && len(resp.Body) == 0 {
		created := dataverse.Record{}
		if entityID := resp.Headers.Get(constants.ODataEntityIDHeader); entityID != "" {
			created[constants.ODataIDField] = entityID
		}

		return created, nil
	}

	return decodeRecord(resp, "parsing created record")
}

// Update implements dataverse.EntityClient.Update. It reports true only
// when the server answers 204 No Content.
func (e *EntityClient) Update(ctx context.Context, id string, data dataverse.Record) (bool, error) {
	err := e.validateProperties(data)
	if err != nil {
		return false, err
	}

	path, err := e.recordPath(id)
	if err != nil {
		return false, err
	}

	resp, err := e.transport().Patch(ctx, path, data)
	if err != nil {
		return false, fmt.Errorf("updating record: %w", err)
	}

	return resp.StatusCode == http.StatusNoContent, nil
}

// Delete implements dataverse.EntityClient.Delete. It reports true only
// when the server answers 204 No Content.
func (e *EntityClient) Delete(ctx context.Context, id string) (bool, error) {
	path, err := e.recordPath(id)
	if err != nil {
		return false, err
	}

	resp, err := e.transport().Delete(ctx, path)
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}

	return resp.StatusCode == http.StatusNoContent, nil
}

// Query implements dataverse.EntityClient.Query.
func (e *EntityClient) Query(ctx context.Context, opts *dataverse.QueryOptions) ([]dataverse.Record, error) {
	resp, err := e.transport().Get(ctx, e.name, opts.Encode())
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	var envelope struct {
		Value *[]dataverse.Record `json:"value"`
	}

	err = json.Unmarshal(resp.Body, &envelope)
	if err != nil {
		return nil, dataverse.NewTransportError("parsing query response", resp, err)
	}

	if envelope.Value == nil {
		return nil, dataverse.NewTransportError("parsing query response", resp, dataverse.ErrMissingValueArray)
	}

	return *envelope.Value, nil
}

func decodeRecord(resp *dataverse.Response, message string) (dataverse.Record, error) {
	var record dataverse.Record

	err := json.Unmarshal(resp.Body, &record)
	if err != nil {
		return nil, dataverse.NewTransportError(message, resp, err)
	}

	return record, nil
}
