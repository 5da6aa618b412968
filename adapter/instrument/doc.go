// Package instrument provides stash adapters that observe another adapter.
//
// Both decorators delegate every call and return the wrapped adapter's result
// and error untouched.
package instrument
