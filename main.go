package main

import "wms-audit/cmd"

func main() {
	cmd.Execute()
}
