//go:build tinygo

package main

import (
	"reflex/app"
	"reflex/hal"
)

func main() {
	app.Run(hal.New())
}
