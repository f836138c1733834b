package sofa

// MetaGetter reports a document's identity. Implement it on struct payloads
// so Put and Update can find the reserved fields without a JSON round trip.
type MetaGetter interface {
	IDRev() (id, rev string)
}

// MetaSetter receives the server-assigned id and revision after a successful
// write.
type MetaSetter interface {
	SetIDRev(id, rev string)
}

// Doc carries the reserved document fields, for embedding in struct payloads:
//
//	type Recipe struct {
//		sofa.Doc
//		Title string `json:"title"`
//	}
type Doc struct {
	ID  string `json:"_id,omitempty"`
	Rev string `json:"_rev,omitempty"`
}

var (
	_ MetaGetter = &Doc{}
	_ MetaSetter = &Doc{}
)

// IDRev returns the document's id and revision.
func (d *Doc) IDRev() (string, string) {
	return d.ID, d.Rev
}

// SetIDRev records the document's id and revision.
func (d *Doc) SetIDRev(id, rev string) {
	d.ID, d.Rev = id, rev
}
