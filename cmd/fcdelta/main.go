// Command fcdelta computes content-defined chunk signatures, diffs one
// file against another's signature, and reconstructs a file from a diff.
package main

func main() {
	Execute()
}
