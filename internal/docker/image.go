// image.go implements multi-stage image builds through the Docker Engine
// API. The build-prod/build-dev/build-test verbs all funnel into
// BuildImage with a different target stage; the daemon resolves the stage
// dependency chain (each runnable stage depends on the shared builder
// stage) on its own.
package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// BuildOptions configures an image build.
type BuildOptions struct {
	// ContextDir is the build context directory.
	ContextDir string

	// Dockerfile is the Dockerfile path relative to the context.
	Dockerfile string

	// Target selects the Dockerfile stage to build.
	Target model.BuildTarget

	// Tag is the full image reference to tag the result with.
	Tag string

	// NoCache disables the build cache (--no-cache).
	NoCache bool

	// Pull always attempts to pull newer base images (--pull).
	Pull bool

	// Labels are applied to the built image.
	Labels map[string]string

	// Output receives the build progress stream. Defaults to os.Stdout.
	Output io.Writer
}

// contextSkipDirs lists directory names never sent to the daemon. The
// builder stage installs dependencies inside the container, so a local
// node_modules only bloats the context; .git is never needed at build time.
var contextSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// BuildImage builds one stage of the project's multi-stage Dockerfile and
// tags the result. The build context is streamed to the daemon as a tar
// archive; progress lines from the daemon are forwarded to opts.Output.
//
// Returns a CLIError with ExitBuildFailed when the daemon reports a build
// error, and ExitDockerNotRunning when the API call itself fails.
func BuildImage(ctx context.Context, cli *Client, opts BuildOptions) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	buildCtx, err := tarBuildContext(opts.ContextDir)
	if err != nil {
		return model.WrapCLIError(
			model.ExitBuildFailed,
			fmt.Sprintf("failed to prepare build context from %s", opts.ContextDir),
			err,
		)
	}

	resp, err := cli.Inner().ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:       []string{opts.Tag},
		Dockerfile: opts.Dockerfile,
		Target:     opts.Target.String(),
		NoCache:    opts.NoCache,
		PullParent: opts.Pull,
		Labels:     opts.Labels,
		Remove:     true,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("image build request failed for %s", opts.Tag),
			err,
		)
	}
	defer func() { _ = resp.Body.Close() }()

	// The daemon streams JSON messages; an "error" field anywhere in the
	// stream means the build failed even though the HTTP call succeeded.
	decoder := json.NewDecoder(resp.Body)
	for {
		var msg struct {
			Stream string `json:"stream"`
			Error  string `json:"error"`
		}
		if err := decoder.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return model.WrapCLIError(
				model.ExitBuildFailed,
				"failed to read build output",
				err,
			)
		}
		if msg.Error != "" {
			return model.NewCLIError(
				model.ExitBuildFailed,
				fmt.Sprintf("build failed for target %s: %s", opts.Target, msg.Error),
			)
		}
		if msg.Stream != "" {
			fmt.Fprint(out, msg.Stream)
		}
	}

	return nil
}

// tarBuildContext packages a directory into an in-memory tar archive for
// ImageBuild. Paths inside the archive are relative to the context root,
// using forward slashes as the daemon expects.
func tarBuildContext(contextDir string) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	root := filepath.Clean(contextDir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if contextSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		// Symlinks and other irregular entries are skipped; the build
		// context only needs regular files.
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		header := &tar.Header{
			Name: filepath.ToSlash(rel),
			Mode: int64(info.Mode().Perm()),
			Size: info.Size(),
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing tar header for %s: %w", rel, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, f); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing %s to tar: %w", rel, err)
		}
		return f.Close()
	})
	if err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// ImageExists reports whether an image reference is present locally.
func ImageExists(ctx context.Context, cli *Client, ref string) bool {
	_, _, err := cli.Inner().ImageInspectWithRaw(ctx, ref)
	return err == nil
}

// RemoveImage deletes a local image by reference. With force true, the
// image is untagged and removed even if containers reference it.
func RemoveImage(ctx context.Context, cli *Client, ref string, force bool) error {
	_, err := cli.Inner().ImageRemove(ctx, ref, image.RemoveOptions{
		Force:         force,
		PruneChildren: true,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("failed to remove image %q", ref),
			err,
		)
	}
	return nil
}
