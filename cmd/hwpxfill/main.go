// hwpxfill CLI - fill named slots in HWPX document containers
package main

func main() {
	Execute()
}
