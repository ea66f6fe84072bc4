package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var dist embed.FS

// Assets 前端构建产物，echo 静态中间件直接挂载
func Assets() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		// dist 随二进制内嵌，取不到说明构建产物损坏
		panic(err)
	}
	return sub
}
