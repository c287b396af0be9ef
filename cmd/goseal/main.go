// Command goseal converts, checks and benchmarks serialized entity
// documents.
package main

func main() {
	Execute()
}
