// Example: search a catalog and resolve the first movie with the vlyx library
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/netvlyx/vlyx/pkg/vlyx"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("usage: resolve <base url> <query>")
	}

	client, err := vlyx.NewClient(vlyx.Options{BaseURL: os.Args[1]})
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	fmt.Printf("Searching for %q...\n", os.Args[2])
	titles, err := client.Search(ctx, os.Args[2], 1)
	if err != nil {
		log.Fatal(err)
	}
	if len(titles) == 0 {
		fmt.Println("No results")
		return
	}

	details, err := client.Details(ctx, titles[0].ItemRef)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n%s\n", details.Title)
	if details.IsSeries {
		fmt.Println("   Series: use Client.Episodes with a quality's Episode target")
		return
	}
	if len(details.Qualities) == 0 || details.Qualities[0].Episode == nil {
		fmt.Println("   No downloads listed")
		return
	}

	q := details.Qualities[0]
	fmt.Printf("   Quality: %s (%s)\n\n", q.Label, q.Size)
	mirrors, err := client.Servers(ctx, q.Episode)
	if err != nil {
		log.Fatal(err)
	}

	for i, m := range mirrors {
		fmt.Printf("%d. %s\n", i+1, m.Provider)
		if m.Target == nil {
			fmt.Printf("   URL: %s\n", m.URL)
			continue
		}
		links, err := client.Unlock(ctx, m.Target)
		if err != nil {
			fmt.Printf("   unlock failed: %v\n", err)
			continue
		}
		for _, l := range links {
			fmt.Printf("   %s: %s\n", l.Provider, l.URL)
		}
	}
}
