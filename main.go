package main

import "github.com/crystaldolphin/msgscheduler/cmd"

func main() {
	cmd.Execute()
}
