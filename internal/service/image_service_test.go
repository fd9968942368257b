package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG header; enough for content sniffing.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

type fakeHost struct {
	url      string
	err      error
	gotData  []byte
	gotName  string
	uploaded int
}

func (f *fakeHost) Upload(_ context.Context, data []byte, filename string) (string, error) {
	f.uploaded++
	f.gotData = data
	f.gotName = filename
	return f.url, f.err
}

func TestRelayForwardsImage(t *testing.T) {
	req := require.New(t)
	host := &fakeHost{url: "https://img.example/abc.png"}
	svc := NewImageService(host, 1<<20, zerolog.Nop())

	url, err := svc.Relay(context.Background(), pngHeader, "avatar.png")
	req.NoError(err)
	req.Equal("https://img.example/abc.png", url)
	req.Equal(1, host.uploaded)
	req.Equal("avatar.png", host.gotName)
	req.Equal(pngHeader, host.gotData)
}

func TestRelayRejectsNonImage(t *testing.T) {
	req := require.New(t)
	host := &fakeHost{url: "https://img.example/abc.png"}
	svc := NewImageService(host, 1<<20, zerolog.Nop())

	_, err := svc.Relay(context.Background(), []byte("#!/bin/sh\nrm -rf /"), "avatar.png")
	req.ErrorIs(err, ErrUnsupportedImage)
	req.Zero(host.uploaded)
}

func TestRelayRejectsOversizedPayload(t *testing.T) {
	req := require.New(t)
	host := &fakeHost{url: "https://img.example/abc.png"}
	svc := NewImageService(host, 8, zerolog.Nop())

	_, err := svc.Relay(context.Background(), pngHeader, "avatar.png")
	req.ErrorIs(err, ErrImageTooLarge)
	req.Zero(host.uploaded)
}

func TestRelayWrapsHostFailure(t *testing.T) {
	req := require.New(t)
	host := &fakeHost{err: errors.New("503 from host")}
	svc := NewImageService(host, 1<<20, zerolog.Nop())

	_, err := svc.Relay(context.Background(), pngHeader, "avatar.png")
	req.ErrorIs(err, ErrUploadFailed)
	req.Contains(err.Error(), "503 from host")
}
