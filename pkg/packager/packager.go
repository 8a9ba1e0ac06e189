// Package packager builds the deployment archive: the three fixed files of
// the static site plus the live UI source.
//
// The archive is all-or-nothing. If the UI source cannot be fetched or any
// entry fails to write, [Build] returns an error and no bytes.
package packager

import (
	"archive/zip"
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/redactor/pkg/blob"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/observability"
)

// EntryTime is the modification time stamped on every entry, so the fixed
// entries are byte-identical across builds.
var EntryTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry is one named file in the archive.
type Entry struct {
	Name string
	Data []byte
}

// Entries returns the archive contents in order for the given UI source.
func Entries(app []byte) []Entry {
	return []Entry{
		{IndexHTMLName, []byte(IndexHTML)},
		{IndexJSName, []byte(IndexJS)},
		{MetadataName, []byte(MetadataJSON)},
		{AppSourceName, app},
	}
}

// Build fetches the UI source and zips it with the fixed entries.
func Build(ctx context.Context, src Source) ([]byte, error) {
	hooks := observability.Package()
	name := describe(src)
	hooks.OnPackageStart(ctx, name)
	start := time.Now()

	data, err := build(ctx, src)
	hooks.OnPackageComplete(ctx, name, len(data), time.Since(start), err)
	return data, err
}

func build(ctx context.Context, src Source) ([]byte, error) {
	app, err := src.Fetch(ctx)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCodeArchive, err, "fetch UI source from %s", describe(src))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range Entries(app) {
		hdr := &zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: EntryTime,
		}
		hdr.SetMode(0644)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, rerrors.Wrap(rerrors.ErrCodeArchive, err, "add %s", e.Name)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, rerrors.Wrap(rerrors.ErrCodeArchive, err, "write %s", e.Name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCodeArchive, err, "finish archive")
	}
	return buf.Bytes(), nil
}

// Package builds the archive and hands it to sink as [ArchiveName].
// Nothing reaches the sink when the build fails.
func Package(ctx context.Context, src Source, sink blob.Sink) error {
	data, err := Build(ctx, src)
	if err != nil {
		return err
	}
	if err := sink.Save(ctx, data, ArchiveName); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeArchive, err, "save archive")
	}
	return nil
}
