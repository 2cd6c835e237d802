// Command rufsd formats and mounts rufs disk images. It is the external
// CLI entrypoint / mount-configuration / process-lifecycle layer spec.md
// §1 calls out as out of scope for the core; it exists so the repo is a
// runnable binary, not just a library, the way disko's cmd/main.go wraps
// the disko driver packages in a urfave/cli App.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/geometry"
)

func main() {
	app := &cli.App{
		Name:  "rufsd",
		Usage: "format and mount a tiny disk-image file system",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "create or wipe an image",
				ArgsUsage: "IMAGE_PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "profile",
						Usage: fmt.Sprintf("geometry preset: one of %v", geometry.Names()),
						Value: "default",
					},
				},
				Action: formatImage,
			},
			{
				Name:      "mount",
				Usage:     "mount an existing (or fresh) image at a mountpoint",
				ArgsUsage: "IMAGE_PATH MOUNTPOINT",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "profile",
						Usage: "geometry preset used if IMAGE_PATH doesn't exist yet",
						Value: "default",
					},
				},
				Action: mountImage,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("rufsd: %s", err)
	}
}

func formatImage(c *cli.Context) error {
	imagePath := c.Args().Get(0)
	if imagePath == "" {
		return fmt.Errorf("IMAGE_PATH is required")
	}

	g, err := geometry.Get(c.String("profile"))
	if err != nil {
		return err
	}

	dev, err := rufs.DevInit(imagePath, g.BlockSize, totalBlocksForGeometry(g))
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := rufs.Mkfs(dev, g); err != nil {
		return err
	}

	log.Printf("formatted %s with profile %q (%s)", imagePath, g.Name, g.Description)
	return nil
}

func mountImage(c *cli.Context) error {
	imagePath := c.Args().Get(0)
	mountPoint := c.Args().Get(1)
	if imagePath == "" || mountPoint == "" {
		return fmt.Errorf("IMAGE_PATH and MOUNTPOINT are required")
	}

	g, err := geometry.Get(c.String("profile"))
	if err != nil {
		return err
	}

	fs, err := rufs.Mount(imagePath, g)
	if err != nil {
		return err
	}
	defer fs.Unmount()

	log.Printf("mounting %s at %s (ctrl-c to unmount)", imagePath, mountPoint)
	return runFuseServer(fs, mountPoint)
}

// totalBlocksForGeometry mirrors rufs.totalBlocksForGeometry (unexported
// there): superblock + bitmaps + inode table + the full data area.
func totalBlocksForGeometry(g rufs.Geometry) uint32 {
	layout := rufs.ComputeLayout(g)
	return layout.DStartBlock + g.MaxDataBlocks
}
