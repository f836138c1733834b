package sofa_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sofadb/sofa"
)

// TestLiveRoundTrip exercises the full document lifecycle against a real
// server. It is skipped unless SOFA_TEST_DSN is set, and creates and destroys
// a uniquely named database.
func TestLiveRoundTrip(t *testing.T) {
	dsn := os.Getenv("SOFA_TEST_DSN")
	if dsn == "" {
		t.Skip("SOFA_TEST_DSN not configured")
	}

	ctx := context.Background()
	client, err := sofa.New(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}

	dbName := "sofa-test-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := client.CreateDB(ctx, dbName)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := client.DestroyDB(ctx, dbName); err != nil {
			t.Error(err)
		}
	}()

	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("Expected created db to exist")
	}

	doc := map[string]interface{}{"_id": "alpha", "kind": "test", "n": 1}
	id, rev, err := db.Put(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if id != "alpha" || rev == "" {
		t.Fatalf("Unexpected write result: %s / %s", id, rev)
	}
	if doc["_rev"] != rev {
		t.Errorf("Expected rev written back, got %v", doc["_rev"])
	}

	if _, _, err := db.Put(ctx, map[string]interface{}{"_id": "alpha"}); !sofa.Conflict(err) {
		t.Errorf("Expected conflict on stale write, got %v", err)
	}

	var fetched struct {
		sofa.Doc
		Kind string `json:"kind"`
		N    int    `json:"n"`
	}
	if err := db.GetInto(ctx, "alpha", nil, &fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.Rev != rev || fetched.Kind != "test" {
		t.Errorf("Unexpected doc: %+v", fetched)
	}

	updateRev, err := db.Update(ctx, map[string]interface{}{"_id": "alpha", "kind": "test", "n": 2})
	if err != nil {
		t.Fatal(err)
	}
	if updateRev == rev {
		t.Error("Expected a new revision from Update")
	}

	attRev, err := db.PutAttachment(ctx, "alpha", updateRev, "note.txt", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatal(err)
	}
	att, err := db.GetAttachment(ctx, "alpha", "note.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(att.Content) != "hello" || att.ContentType != "text/plain" {
		t.Errorf("Unexpected attachment: %+v", att)
	}

	all, err := db.AllDocs(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Rows) != 1 {
		t.Errorf("Unexpected row count: %d", len(all.Rows))
	}

	delRev, err := db.Delete(ctx, "alpha", attRev)
	if err != nil {
		t.Fatal(err)
	}
	if delRev == "" {
		t.Error("Expected a tombstone revision")
	}
	if _, err := db.Get(ctx, "alpha", nil); !sofa.NotFound(err) {
		t.Errorf("Expected deleted doc to be gone, got %v", err)
	}

	if _, err := db.Compact(ctx, sofa.CompactOptions{Purge: true}); err != nil {
		t.Fatal(err)
	}
}
