package storage

import "testing"

// newTestServices returns the storage services over a fresh temp data
// directory.
func newTestServices(t *testing.T) (*Directory, *DomainService, *ItemService, *SelectService) {
	t.Helper()
	dir, err := NewDirectory(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	return dir, NewDomainService(dir, 0), NewItemService(dir), NewSelectService(dir)
}
