package sofa

import (
	"context"
	"net/http"
)

// DBInfo describes a database's state.
type DBInfo struct {
	Name           string     `json:"db_name"`
	DocCount       int64      `json:"doc_count"`
	DocDelCount    int64      `json:"doc_del_count"`
	UpdateSeq      SequenceID `json:"update_seq"`
	DiskSize       int64      `json:"disk_size"`
	CompactRunning bool       `json:"compact_running"`
	Sizes          struct {
		File     int64 `json:"file"`
		External int64 `json:"external"`
		Active   int64 `json:"active"`
	} `json:"sizes"`
}

// Info fetches the database's metadata. On 2.x+ servers the Sizes breakdown
// supersedes DiskSize; when present, DiskSize is filled from Sizes.File for
// uniform access.
func (db *DB) Info(ctx context.Context) (*DBInfo, error) {
	info := new(DBInfo)
	if _, err := db.client.DoJSON(ctx, http.MethodGet, db.name, nil, info); err != nil {
		return nil, err
	}
	if info.Sizes.File > 0 {
		info.DiskSize = info.Sizes.File
	}
	return info, nil
}
