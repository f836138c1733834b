// Package sofa is an ergonomic client for CouchDB-compatible document
// stores. It exposes document CRUD, view queries with result reshaping,
// attachments, and database administration and maintenance over the server's
// HTTP API.
//
// A Client is obtained with New, and database operations hang off explicit
// *DB handles:
//
//	client, err := sofa.New(ctx, "http://localhost:5984/")
//	if err != nil {
//		panic(err)
//	}
//	db := client.DB("recipes")
//	id, rev, err := db.Put(ctx, map[string]interface{}{"title": "Sponge Cake"})
//
// All operations are synchronous and block until the server responds, bounded
// by the context and the configured timeout. The library issues no concurrent
// requests of its own, performs no retries, and surfaces revision conflicts
// as ordinary HTTP 409 errors.
package sofa
