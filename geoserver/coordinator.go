package geoserver

import (
	"github.com/jazijazi/jahadchecker/config"
	"github.com/jazijazi/jahadchecker/pgimport"
)

// gsAPI is the slice of Client the coordinator needs; tests swap it out.
type gsAPI interface {
	WorkspaceExists(name string) (bool, error)
	CreateWorkspace(name string) error
	DatastoreExists(workspace, name string) (bool, error)
	CreateDatastore(workspace, name string) error
	FeatureTypeExists(workspace, store, name string) (bool, error)
	PublishFeatureType(workspace, store, table, title string) error
	UnpublishFeatureType(workspace, store, table string) error
}

// Coordinator publishes database tables to GeoServer, creating the
// workspace and datastore on first use. Publishing is idempotent and
// failures roll back the layers published in the same call.
type Coordinator struct {
	api       gsAPI
	workspace string
	store     string
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		api:       NewClient(),
		workspace: config.GeoserverWorkspace,
		store:     config.GeoserverStore,
	}
}

func (c *Coordinator) ensureContainers() error {
	ok, err := c.api.WorkspaceExists(c.workspace)
	if err != nil {
		return err
	}
	if !ok {
		if err := c.api.CreateWorkspace(c.workspace); err != nil {
			return err
		}
	}

	ok, err = c.api.DatastoreExists(c.workspace, c.store)
	if err != nil {
		return err
	}
	if !ok {
		if err := c.api.CreateDatastore(c.workspace, c.store); err != nil {
			return err
		}
	}
	return nil
}

// PublishTables publishes each table as a layer titled by titles[i]. When
// any publish fails, layers published by this call are removed again.
func (c *Coordinator) PublishTables(tables []string, titles []string) error {
	if err := c.ensureContainers(); err != nil {
		return err
	}

	saga := &pgimport.Saga{}
	for i, table := range tables {
		exists, err := c.api.FeatureTypeExists(c.workspace, c.store, table)
		if err != nil {
			saga.Rollback()
			return err
		}
		if exists {
			continue
		}

		title := table
		if i < len(titles) && titles[i] != "" {
			title = titles[i]
		}
		if err := c.api.PublishFeatureType(c.workspace, c.store, table, title); err != nil {
			saga.Rollback()
			return err
		}
		name := table
		saga.Add("unpublish "+name, func() error {
			return c.api.UnpublishFeatureType(c.workspace, c.store, name)
		})
	}

	saga.Reset()
	return nil
}

// Unpublish removes a single layer, ignoring layers that were never
// published.
func (c *Coordinator) Unpublish(table string) error {
	exists, err := c.api.FeatureTypeExists(c.workspace, c.store, table)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return c.api.UnpublishFeatureType(c.workspace, c.store, table)
}
