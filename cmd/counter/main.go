// Command counter prints how many entries are below a directory.
// It is a minimal caller of the listing package without the CLI stack.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/dendrascience/dirlist/listing"
)

func main() {
	root := "./"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paths, err := listing.List(ctx, root)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	fmt.Println(len(paths))
}
