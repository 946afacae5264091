package main

import "photomap-backend/internal/app"

func main() {
	app.Run()
}
