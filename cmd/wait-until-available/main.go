package main

import (
	"fmt"
	"net/http"
	"time"
)

// Polls the service's health endpoint until it answers, for use in container
// startup scripts that must not proceed before the service is reachable.
func main() {
	totalWaitTime := 0
	for {
		res, err := http.Get("http://localhost:8080/healthz")
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println("service is available")
				break
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("waiting, %d seconds so far\n", totalWaitTime)
		time.Sleep(5 * time.Second)
	}
}
