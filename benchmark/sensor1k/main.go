package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var maxDevices int = 1000
var httpHostPort string = "127.0.0.1:1080"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

func main() {
	deviceIDs := make([]string, maxDevices)
	for i := 0; i < maxDevices; i++ {
		deviceIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v device IDs\n", maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			registerSubscriber(deviceIDs[i])
			fmt.Printf("\rregistered subscriber for device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rregistered subscribers for %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			doAction(deviceIDs[i])
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices*3)/usedTime.Seconds(),
	)
}

func rndFloat64(min, max float64, decimal int) float64 {
	val := min + rnd.Float64()*(max-min)
	multiplier := float64(math.Pow10(decimal))
	return float64(math.Round(float64(val)*float64(multiplier))) / multiplier
}

func registerSubscriber(deviceID string) {
	payload := map[string]string{
		"phone_number": fmt.Sprintf("+1555%07d", rnd.Int31n(10000000)),
	}
	jsonData, _ := json.Marshal(payload)
	resp, err := http.Post(
		fmt.Sprintf("http://%s/devices/%s/subscribers", httpHostPort, deviceID),
		"application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
}

func doAction(deviceID string) {
	actions := []func(){
		genQuietReadingAction(deviceID),
		genRiskyReadingAction(deviceID),
		genGetReadingsAction(deviceID),
	}
	actionNames := []string{
		"QuietReading",
		"RiskyReading",
		"GetReadings",
	}
	rnd.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
		actionNames[i], actionNames[j] = actionNames[j], actionNames[i]
	})
	for index, action := range actions {
		action()
		fmt.Printf("\rexecuted action %v for device %v", actionNames[index], deviceID)
		time.Sleep(time.Duration(100+rnd.Int31n(1000)) * time.Millisecond)
	}
}

func postReading(deviceID string, soilMin, soilMax, tiltMax, vibrationMax float64) {
	payload := map[string]any{
		"device_id":       deviceID,
		"soil_moisture_1": rndFloat64(soilMin, soilMax, 2),
		"soil_moisture_2": rndFloat64(soilMin, soilMax, 2),
		"soil_moisture_3": rndFloat64(soilMin, soilMax, 2),
		"tilt":            rndFloat64(0, tiltMax, 2),
		"vibration":       rndFloat64(0, vibrationMax, 3),
	}

	jsonData, _ := json.Marshal(payload)
	resp, err := http.Post(
		fmt.Sprintf("http://%s/sensors", httpHostPort),
		"application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("\nresponse status code != 200: %v\n", resp)
	}
}

func genQuietReadingAction(deviceID string) func() {
	return func() {
		postReading(deviceID, 0.0, 50.0, 1.5, 0.02)
	}
}

func genRiskyReadingAction(deviceID string) func() {
	return func() {
		postReading(deviceID, 60.0, 100.0, 8.0, 0.30)
	}
}

func genGetReadingsAction(deviceID string) func() {
	return func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/devices/%s/readings", httpHostPort, deviceID))
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("\nresponse status code != 200: %v\n", resp)
		}
	}
}
