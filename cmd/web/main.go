package main

import "careshift_backend/internal/app"

func main() {
	app.Run()
}
