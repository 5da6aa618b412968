package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
	"github.com/spetersoncode/stash/query"
)

// command is a parsed CLI invocation.
type command struct {
	name string
	run  func(ctx context.Context, s *stash.Store[Document], out io.Writer) error
}

func parseCommand(args []string) (*command, error) {
	name, rest := args[0], args[1:]
	switch name {
	case "get":
		if len(rest) > 1 {
			return nil, fmt.Errorf("get takes at most one path")
		}
		path := ""
		if len(rest) == 1 {
			path = rest[0]
		}
		return &command{name: name, run: func(ctx context.Context, s *stash.Store[Document], out io.Writer) error {
			return getValue(ctx, s, path, out)
		}}, nil
	case "set":
		if len(rest) != 2 {
			return nil, fmt.Errorf("set takes a path and a value")
		}
		return &command{name: name, run: func(ctx context.Context, s *stash.Store[Document], _ io.Writer) error {
			return setValue(ctx, s, rest[0], rest[1])
		}}, nil
	case "clear":
		if len(rest) != 0 {
			return nil, fmt.Errorf("clear takes no arguments")
		}
		return &command{name: name, run: func(ctx context.Context, s *stash.Store[Document], _ io.Writer) error {
			return clearDocument(ctx, s)
		}}, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

func getValue(ctx context.Context, s *stash.Store[Document], path string, out io.Writer) error {
	if err := s.Read(ctx); err != nil {
		return err
	}

	if path == "" {
		raw, err := codec.Encode(codec.DefaultJSON, s.Data())
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			raw = []byte("null\n")
		}
		_, err = out.Write(raw)
		return err
	}

	res := query.Of(s).Get(path)
	if err := res.Err(); err != nil {
		return err
	}
	if !res.Exists() {
		return fmt.Errorf("no value at %q", path)
	}
	_, err := fmt.Fprintln(out, res.String())
	return err
}

func setValue(ctx context.Context, s *stash.Store[Document], path, value string) error {
	if err := s.Read(ctx); err != nil {
		return err
	}

	q := query.Of(s)
	var (
		updated *Document
		err     error
	)
	if json.Valid([]byte(value)) {
		updated, err = q.SetRaw(path, []byte(value))
	} else {
		updated, err = q.Set(path, value)
	}
	if err != nil {
		return err
	}

	s.Replace(updated)
	return s.Write(ctx)
}

func clearDocument(ctx context.Context, s *stash.Store[Document]) error {
	s.Replace(nil)
	return s.Write(ctx)
}
