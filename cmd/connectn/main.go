package main

import (
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/hailam/connectn/internal/cli"
	"github.com/hailam/connectn/internal/store"
)

var seed = flag.Int64("seed", 1, "PRNG seed for the \"random\" bot preset")

func main() {
	flag.Parse()

	db, err := store.NewStorage()
	if err != nil {
		log.Printf("warning: persistent preferences/stats unavailable: %v", err)
		db = nil
	}

	repl := cli.New(os.Stdout, rand.New(rand.NewSource(*seed)))

	if db != nil {
		defer db.Close()
		if first, _ := db.IsFirstLaunch(); first {
			_ = db.SavePreferences(store.DefaultPreferences())
			_ = db.MarkFirstLaunchComplete()
		}
		if prefs, err := db.LoadPreferences(); err == nil {
			repl.ApplyPreferences(prefs)
		}
		repl.SetStorage(db)
	}

	repl.Run(os.Stdin)
}
