// Package ecs150fs implements a small single-mount, single-threaded,
// FAT-style file system on top of a fixed-size block-addressable virtual
// disk. Files are flat (no directories), support byte-granular random
// access, and are allocated in blocks tracked by a File Allocation Table.
//
// A typical session mounts a device, performs file operations, and
// unmounts to flush metadata back to the device:
//
//	var fsys ecs150fs.FS
//	err := fsys.Mount(device)
//	...
//	fd, err := fsys.Open("greeting.txt")
//	...
//	n, err := fsys.Write(fd, []byte("hello"))
//	...
//	err = fsys.Close(fd)
//	err = fsys.Umount()
package ecs150fs
