package geoserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jazijazi/jahadchecker/config"
)

// Client talks to the GeoServer REST API with basic auth.
type Client struct {
	BaseURL  string
	Username string
	Password string
	HTTP     *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:  config.GeoserverURL,
		Username: config.GeoserverUser,
		Password: config.GeoserverPass,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.SetBasicAuth(c.Username, c.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data, nil
}

func (c *Client) WorkspaceExists(name string) (bool, error) {
	status, _, err := c.do(http.MethodGet, "/rest/workspaces/"+name+".json", nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

func (c *Client) CreateWorkspace(name string) error {
	body := map[string]interface{}{
		"workspace": map[string]string{"name": name},
	}
	status, data, err := c.do(http.MethodPost, "/rest/workspaces", body)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("geoserver workspace create failed (%d): %s", status, data)
	}
	return nil
}

func (c *Client) DatastoreExists(workspace, name string) (bool, error) {
	path := fmt.Sprintf("/rest/workspaces/%s/datastores/%s.json", workspace, name)
	status, _, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// CreateDatastore registers the application database as a postgis store.
func (c *Client) CreateDatastore(workspace, name string) error {
	body := map[string]interface{}{
		"dataStore": map[string]interface{}{
			"name": name,
			"connectionParameters": map[string]interface{}{
				"entry": []map[string]string{
					{"@key": "host", "$": config.MainConfig.Host},
					{"@key": "port", "$": config.MainConfig.Port},
					{"@key": "database", "$": config.MainConfig.Dbname},
					{"@key": "user", "$": config.MainConfig.Username},
					{"@key": "passwd", "$": config.MainConfig.Password},
					{"@key": "dbtype", "$": "postgis"},
					{"@key": "schema", "$": "public"},
				},
			},
		},
	}
	path := fmt.Sprintf("/rest/workspaces/%s/datastores", workspace)
	status, data, err := c.do(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("geoserver datastore create failed (%d): %s", status, data)
	}
	return nil
}

func (c *Client) FeatureTypeExists(workspace, store, name string) (bool, error) {
	path := fmt.Sprintf("/rest/workspaces/%s/datastores/%s/featuretypes/%s.json", workspace, store, name)
	status, _, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// PublishFeatureType exposes a table of the datastore as a layer.
func (c *Client) PublishFeatureType(workspace, store, table, title string) error {
	body := map[string]interface{}{
		"featureType": map[string]interface{}{
			"name":       table,
			"nativeName": table,
			"title":      title,
			"srs":        "EPSG:4326",
		},
	}
	path := fmt.Sprintf("/rest/workspaces/%s/datastores/%s/featuretypes", workspace, store)
	status, data, err := c.do(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("geoserver publish failed (%d): %s", status, data)
	}
	return nil
}

// UnpublishFeatureType removes a published layer, recursing into the layer
// resource so compensation can undo a publish.
func (c *Client) UnpublishFeatureType(workspace, store, table string) error {
	path := fmt.Sprintf("/rest/workspaces/%s/datastores/%s/featuretypes/%s?recurse=true", workspace, store, table)
	status, data, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("geoserver unpublish failed (%d): %s", status, data)
	}
	return nil
}
