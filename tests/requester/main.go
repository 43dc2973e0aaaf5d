package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Гоняет параллельные оформления и подтверждения одного товара против сервиса
// с PAYMENT_SANDBOX=true. Количество "completed" не должно превышать остаток.

type checkoutRequest struct {
	Items    []item   `json:"items"`
	Customer customer `json:"customer"`
	Shipping shipping `json:"shipping"`
}

type item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type customer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type shipping struct {
	Address1   string `json:"address1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type checkoutResponse struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
}

type completeResponse struct {
	Status string `json:"status"`
}

var client = &http.Client{Timeout: 30 * time.Second}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "адрес сервиса")
	productID := flag.String("product", "", "товар, за который соревнуются покупатели")
	buyers := flag.Int("buyers", 50, "количество параллельных покупателей")
	quantity := flag.Int("qty", 1, "количество товара в каждом заказе")
	flag.Parse()

	if *productID == "" {
		fmt.Println("укажите -product")
		return
	}

	var (
		mu      sync.Mutex
		results = make(map[string]int)
		wg      sync.WaitGroup
	)

	start := time.Now()
	for i := range *buyers {
		wg.Go(func() {
			res := buy(*baseURL, *productID, *quantity, i)
			mu.Lock()
			results[res]++
			mu.Unlock()
		})
	}
	wg.Wait()

	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%d покупателей за %s\n", *buyers, time.Since(start).Round(time.Millisecond))
	for _, k := range keys {
		fmt.Printf("  %-40s %d\n", k, results[k])
	}
}

func buy(baseURL, productID string, qty, n int) string {
	req := checkoutRequest{
		Items: []item{{ProductID: productID, Quantity: qty}},
		Customer: customer{
			Email:     fmt.Sprintf("buyer%d@example.com", n),
			FirstName: "Load",
			LastName:  fmt.Sprintf("Buyer%d", n),
		},
		Shipping: shipping{Address1: "1 Main St", City: "Austin", State: "TX", PostalCode: "78701"},
	}

	var session checkoutResponse
	status, err := post(baseURL+"/api/checkout", req, &session)
	if err != nil {
		return "checkout: " + err.Error()
	}
	if status != http.StatusCreated {
		return fmt.Sprintf("checkout: %d", status)
	}

	// В песочнице client secret имеет вид <intent id>_secret
	intentID, _, _ := strings.Cut(session.ClientSecret, "_secret")

	var done completeResponse
	status, err = post(baseURL+"/api/checkout/complete", map[string]string{
		"orderId":         session.OrderID,
		"paymentIntentId": intentID,
	}, &done)
	if err != nil {
		return "complete: " + err.Error()
	}
	if status != http.StatusOK {
		return fmt.Sprintf("complete: %d", status)
	}
	return "complete: " + done.Status
}

func post(url string, body, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}
