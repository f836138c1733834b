package sofa

import (
	"context"
	"net/http"
	"strings"
)

// AllDBs returns the list of databases on the server.
func (c *Client) AllDBs(ctx context.Context) ([]string, error) {
	var allDBs []string
	_, err := c.DoJSON(ctx, http.MethodGet, "/_all_dbs", nil, &allDBs)
	return allDBs, err
}

// CreateDB creates the named database, and returns a handle to it.
func (c *Client) CreateDB(ctx context.Context, dbName string) (*DB, error) {
	if dbName == "" {
		return nil, missingArg("dbName")
	}
	if _, err := c.DoError(ctx, http.MethodPut, dbName, nil); err != nil {
		return nil, err
	}
	return c.DB(dbName), nil
}

// DestroyDB deletes the named database and everything in it.
func (c *Client) DestroyDB(ctx context.Context, dbName string) error {
	if dbName == "" {
		return missingArg("dbName")
	}
	_, err := c.DoError(ctx, http.MethodDelete, dbName, nil)
	return err
}

// DBExists returns true if the named database exists.
func (c *Client) DBExists(ctx context.Context, dbName string) (bool, error) {
	if dbName == "" {
		return false, missingArg("dbName")
	}
	_, err := c.DoError(ctx, http.MethodHead, dbName, nil)
	if HTTPStatus(err) == http.StatusNotFound {
		return false, nil
	}
	return err == nil, err
}

// ServerInfo describes the server, from its root endpoint.
type ServerInfo struct {
	CouchDB string `json:"couchdb"`
	Version string `json:"version"`
	Vendor  struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"vendor"`
}

// ServerVersion returns the server's version information.
func (c *Client) ServerVersion(ctx context.Context) (*ServerInfo, error) {
	info := new(ServerInfo)
	_, err := c.DoJSON(ctx, http.MethodGet, "/", nil, info)
	return info, err
}

// Ping queries the /_up endpoint, and returns true if there are no errors, or
// if a 400 (Bad Request) is returned and the Server header indicates a server
// version prior to 2.x.
func (c *Client) Ping(ctx context.Context) bool {
	resp, err := c.DoError(ctx, http.MethodHead, "/_up", nil)
	if HTTPStatus(err) == http.StatusBadRequest {
		return strings.HasPrefix(resp.Header.Get("Server"), "CouchDB/1.")
	}
	return err == nil
}
