package geoserver

import (
	"errors"
	"testing"
)

type fakeAPI struct {
	workspaces map[string]bool
	stores     map[string]bool
	layers     map[string]bool

	publishErrOn string
	calls        []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		workspaces: map[string]bool{},
		stores:     map[string]bool{},
		layers:     map[string]bool{},
	}
}

func (f *fakeAPI) WorkspaceExists(name string) (bool, error) {
	return f.workspaces[name], nil
}

func (f *fakeAPI) CreateWorkspace(name string) error {
	f.calls = append(f.calls, "create-workspace "+name)
	f.workspaces[name] = true
	return nil
}

func (f *fakeAPI) DatastoreExists(workspace, name string) (bool, error) {
	return f.stores[name], nil
}

func (f *fakeAPI) CreateDatastore(workspace, name string) error {
	f.calls = append(f.calls, "create-datastore "+name)
	f.stores[name] = true
	return nil
}

func (f *fakeAPI) FeatureTypeExists(workspace, store, name string) (bool, error) {
	return f.layers[name], nil
}

func (f *fakeAPI) PublishFeatureType(workspace, store, table, title string) error {
	if table == f.publishErrOn {
		return errors.New("publish failed")
	}
	f.calls = append(f.calls, "publish "+table)
	f.layers[table] = true
	return nil
}

func (f *fakeAPI) UnpublishFeatureType(workspace, store, table string) error {
	f.calls = append(f.calls, "unpublish "+table)
	delete(f.layers, table)
	return nil
}

func newTestCoordinator(api *fakeAPI) *Coordinator {
	return &Coordinator{api: api, workspace: "landreg", store: "landreg_pg"}
}

func TestPublishTablesCreatesContainers(t *testing.T) {
	api := newFakeAPI()
	c := newTestCoordinator(api)

	if err := c.PublishTables([]string{"parcels_ab12cd34"}, []string{"Parcels"}); err != nil {
		t.Fatal(err)
	}

	if !api.workspaces["landreg"] {
		t.Error("workspace not created")
	}
	if !api.stores["landreg_pg"] {
		t.Error("datastore not created")
	}
	if !api.layers["parcels_ab12cd34"] {
		t.Error("layer not published")
	}
}

func TestPublishTablesSkipsExistingContainersAndLayers(t *testing.T) {
	api := newFakeAPI()
	api.workspaces["landreg"] = true
	api.stores["landreg_pg"] = true
	api.layers["already_there"] = true
	c := newTestCoordinator(api)

	err := c.PublishTables([]string{"already_there", "fresh_layer"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, call := range api.calls {
		switch call {
		case "create-workspace landreg", "create-datastore landreg_pg", "publish already_there":
			t.Errorf("unexpected call %q", call)
		}
	}
	if !api.layers["fresh_layer"] {
		t.Error("new layer not published")
	}
}

func TestPublishTablesRollsBackOnFailure(t *testing.T) {
	api := newFakeAPI()
	api.publishErrOn = "bad_layer"
	c := newTestCoordinator(api)

	err := c.PublishTables([]string{"first_ok", "second_ok", "bad_layer"}, nil)
	if err == nil {
		t.Fatal("expected publish error")
	}

	if api.layers["first_ok"] || api.layers["second_ok"] {
		t.Errorf("layers from the failed call left behind: %v", api.layers)
	}

	// rollback runs in reverse publish order
	n := len(api.calls)
	if n < 2 || api.calls[n-2] != "unpublish second_ok" || api.calls[n-1] != "unpublish first_ok" {
		t.Errorf("rollback calls = %v", api.calls)
	}
}

func TestUnpublishMissingLayerIsNoop(t *testing.T) {
	api := newFakeAPI()
	c := newTestCoordinator(api)

	if err := c.Unpublish("never_published"); err != nil {
		t.Fatal(err)
	}
	if len(api.calls) != 0 {
		t.Errorf("calls = %v", api.calls)
	}
}
