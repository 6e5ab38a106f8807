package ecs150fs_test

import (
	"fmt"

	"github.com/ecs150/ecs150fs"
)

func ExampleFS_basicUsage() {
	dataBlocks := 8192
	fatBlocks := (dataBlocks*2 + ecs150fs.BlockSize - 1) / ecs150fs.BlockSize
	totalBlocks := 1 + fatBlocks + 1 + dataBlocks
	dev := ecs150fs.NewMemBlockDevice(totalBlocks)
	if err := ecs150fs.Format(dev, ecs150fs.FormatConfig{DataBlockCount: dataBlocks}); err != nil {
		panic(err)
	}

	var fsys ecs150fs.FS
	if err := fsys.Mount(dev); err != nil {
		panic(err)
	}

	if err := fsys.Create("newfile.txt"); err != nil {
		panic(err)
	}
	fd, err := fsys.Open("newfile.txt")
	if err != nil {
		panic(err)
	}
	if _, err := fsys.Write(fd, []byte("Hello, World!")); err != nil {
		panic(err)
	}
	if err := fsys.Lseek(fd, 0); err != nil {
		panic(err)
	}
	buf := make([]byte, 13)
	if _, err := fsys.Read(fd, buf); err != nil {
		panic(err)
	}
	fmt.Println(string(buf))
	fsys.Close(fd)
	// Output:
	// Hello, World!
}

func ExampleFS_infoString() {
	dev := ecs150fs.NewMemBlockDevice(1 + 4 + 1 + 8192)
	if err := ecs150fs.Format(dev, ecs150fs.FormatConfig{DataBlockCount: 8192}); err != nil {
		panic(err)
	}
	var fsys ecs150fs.FS
	if err := fsys.Mount(dev); err != nil {
		panic(err)
	}
	s, err := fsys.InfoString()
	if err != nil {
		panic(err)
	}
	fmt.Print(s)
	// Output:
	// FS Info:
	// total_blk_count=8198
	// fat_blk_count=4
	// rdir_blk=5
	// data_blk=6
	// data_blk_count=8192
	// fat_free_ratio=8191/8192
	// rdir_free_ratio=128/128
}

func ExampleFS_lsString() {
	dev := ecs150fs.NewMemBlockDevice(1 + 4 + 1 + 8192)
	if err := ecs150fs.Format(dev, ecs150fs.FormatConfig{DataBlockCount: 8192}); err != nil {
		panic(err)
	}
	var fsys ecs150fs.FS
	if err := fsys.Mount(dev); err != nil {
		panic(err)
	}
	fsys.Create("a")
	fsys.Create("b")
	s, err := fsys.LsString()
	if err != nil {
		panic(err)
	}
	fmt.Print(s)
	// Output:
	// file: a, size: 0, data_blk: 65535
	// file: b, size: 0, data_blk: 65535
}
