// Package stash keeps a single in-memory value in sync with a durable medium.
//
// A [Store] holds the current value of a caller-chosen type and delegates
// persistence to an [Adapter]. Nothing is loaded or saved implicitly: callers
// decide when to [Store.Read] and when to [Store.Write].
//
// # Basic Usage
//
// Back a store with a JSON file:
//
//	type Data struct {
//	    Posts []string `json:"posts"`
//	}
//
//	s, err := stash.New[Data](file.JSON[Data]("db.json"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := s.Read(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if !s.Present() {
//	    s.Set(Data{})
//	}
//
//	s.Data().Posts = append(s.Data().Posts, "hello")
//	if err := s.Write(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Absent Values
//
// The value is absent (a nil pointer) until something sets it. Reading a
// medium that does not exist or is empty also yields absent. Writing an
// absent value clears the medium, so absence survives a round trip.
//
// # Adapters
//
// Adapter variants live under the adapter directory:
//
//   - [github.com/spetersoncode/stash/adapter/memory]: in-process snapshot
//   - [github.com/spetersoncode/stash/adapter/file]: JSON, YAML or raw text file
//   - [github.com/spetersoncode/stash/adapter/sqlite]: a named document row in SQLite
//   - [github.com/spetersoncode/stash/adapter/bolt]: a key in a bbolt bucket
//   - [github.com/spetersoncode/stash/adapter/remote]: an HTTP resource
//
// Decorators in [github.com/spetersoncode/stash/adapter/retrying] and
// [github.com/spetersoncode/stash/adapter/instrument] wrap any adapter with
// retries, logging or tracing.
//
// # Errors
//
// Adapters report failures as [*StorageError]. The Store returns them
// unchanged; it never retries or swallows an error. Content that cannot be
// decoded also matches [ErrMalformed].
//
// # Queries
//
// The [github.com/spetersoncode/stash/query] package wraps [Store.Data] to
// provide chained path lookups without extending the Store.
package stash
