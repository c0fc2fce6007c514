// Command fieldops runs the access-control service for the operations dashboard.
package main

func main() {
	Execute()
}
