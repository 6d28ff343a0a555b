package main

import "gamereview-backend/cmd"

func main() {
	cmd.Run()
}
