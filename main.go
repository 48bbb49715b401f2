package main

import "photo-gallery-backend/cmd"

func main() {
	cmd.Run()
}
