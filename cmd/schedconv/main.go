// Package main provides the schedconv command-line tool for converting
// registrar course catalogs into schedb documents.
package main

func main() {
	Execute()
}
