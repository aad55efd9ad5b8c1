package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/cino.go/pkg/cino/channel/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/cino/"
	device  = "+"
)

func init() {
	if val := os.Getenv("CINO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&device, "device", device, "Device ID to watch, all devices by default.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	opts, prefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := mqtt.NewQueue(opts, prefix)
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	token := q.Sub(mqtt.TopicFor(device), func(topic string, payload []byte) {
		id := strings.TrimSuffix(topic, "/out")
		for _, line := range strings.Split(strings.TrimRight(string(payload), "\n"), "\n") {
			log.Printf("%s: %s", id, line)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
