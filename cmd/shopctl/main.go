// shopctl is the storefront's command line client: cart, product search,
// delivery slot display and checkout against a running server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/j1vetr/EscapeTable/internal/cart"
	"github.com/j1vetr/EscapeTable/internal/checkout"
	"github.com/j1vetr/EscapeTable/internal/money"
	"github.com/j1vetr/EscapeTable/internal/order"
	"github.com/j1vetr/EscapeTable/internal/timeslot"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, os.Args[2:])
	case "search":
		err = runSearch(ctx, os.Args[2:])
	case "cart":
		err = runCart(os.Args[2:])
	case "slots":
		err = runSlots(ctx, os.Args[2:])
	case "checkout":
		err = runCheckout(ctx, os.Args[2:])
	case "orders":
		err = runOrders(ctx)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "hata:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `kullanım: shopctl <komut>

  login     -email -password          oturum aç
  search                              etkileşimli ürün arama (satır başına bir sorgu)
  cart      add <ürünId> <adet> | list | remove <ürünId> | undo | clear
  slots     [-watch]                  teslimat saatlerini göster
  checkout  [-location <id>] -day today|tomorrow -hour <saat> -payment cash|bank_transfer [-note ...]
            (-location verilmezse son seçilen teslimat noktası kullanılır)
  orders                              siparişlerimi listele`)
}

func baseURL() string {
	if v := os.Getenv("ESCAPETABLE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func stateDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "escapetable")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func sessionID() string {
	dir, err := stateDir()
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(dir, "session"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func saveSession(sid string) error {
	dir, err := stateDir()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "session"), []byte(sid), 0o600)
}

// toastNotifier renders cart notifications the way the storefront shows
// its toasts.
type toastNotifier struct{}

func (toastNotifier) Notify(n cart.Notification) {
	if n.Detail != "" {
		fmt.Printf("» %s: %s\n", n.Title, n.Detail)
	} else {
		fmt.Printf("» %s\n", n.Title)
	}
}

func openCart() (*cart.Store, error) {
	dir, err := stateDir()
	if err != nil {
		return nil, err
	}
	return cart.NewStore(cart.NewFileStorage(dir), toastNotifier{})
}

func runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "e-posta")
	password := fs.String("password", "", "şifre")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		return fmt.Errorf("-email ve -password zorunludur")
	}

	api := newAPIClient(baseURL(), "")
	sid, err := api.login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := saveSession(sid); err != nil {
		return err
	}
	u, err := newAPIClient(baseURL(), sid).me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("giriş yapıldı: %s %s\n", u.FirstName, u.LastName)
	return nil
}

func runSearch(ctx context.Context, args []string) error {
	api := newAPIClient(baseURL(), sessionID())
	var guard searcher

	// One-shot mode when the query is given as an argument.
	if len(args) > 0 {
		return printSearch(ctx, api, strings.Join(args, " "))
	}

	fmt.Println("aramak için yazın (çıkış: Ctrl+D):")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		query := strings.TrimSpace(sc.Text())
		if query == "" {
			continue
		}
		gen := guard.begin()
		go func(q string, g uint64) {
			products, err := api.searchProducts(ctx, q)
			if !guard.current(g) {
				return
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, "arama hatası:", err)
				return
			}
			if len(products) == 0 {
				fmt.Printf("%q için sonuç yok\n", q)
				return
			}
			for _, p := range products {
				fmt.Printf("  %-36s  %-30s %s\n", p.ID, p.Name, money.FormatPrice(p.PriceInCents))
			}
		}(query, gen)
	}
	return sc.Err()
}

func printSearch(ctx context.Context, api *apiClient, query string) error {
	products, err := api.searchProducts(ctx, query)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%-36s  %-30s %s\n", p.ID, p.Name, money.FormatPrice(p.PriceInCents))
	}
	return nil
}

func runCart(args []string) error {
	store, err := openCart()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("kullanım: cart add <ürünId> [adet]")
		}
		qty := 1
		if len(args) >= 3 {
			if qty, err = strconv.Atoi(args[2]); err != nil || qty <= 0 {
				return fmt.Errorf("adet pozitif bir sayı olmalı")
			}
		}
		api := newAPIClient(baseURL(), sessionID())
		p, err := api.product(context.Background(), args[1])
		if err != nil {
			return err
		}
		store.Add(p, qty)
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("kullanım: cart remove <ürünId>")
		}
		store.Remove(args[1])
	case "undo":
		if !store.Undo() {
			fmt.Println("geri alınacak bir işlem yok")
		}
	case "clear":
		store.Clear()
		fmt.Println("sepet boşaltıldı")
	case "list":
		items := store.Items()
		if len(items) == 0 {
			fmt.Println("sepetiniz boş")
			return nil
		}
		for _, it := range items {
			fmt.Printf("%3d × %-30s %10s\n", it.Quantity, it.Product.Name, money.FormatPrice(it.Subtotal()))
		}
		fmt.Printf("toplam: %s (%d ürün)\n", money.FormatPrice(store.TotalAmount()), store.TotalItems())
	default:
		return fmt.Errorf("bilinmeyen sepet komutu: %s", args[0])
	}
	return nil
}

func printSlots(u checkout.Update) {
	fmt.Println("bugün:")
	if len(u.Today) == 0 {
		fmt.Println("  bugün için teslimat saati kalmadı")
	}
	for _, s := range u.Today {
		fmt.Printf("  %s  %s\n", s.ID, s.Label)
	}
	fmt.Println("yarın:")
	for _, s := range u.Tomorrow {
		fmt.Printf("  %s  %s\n", s.ID, s.Label)
	}
	switch u.Change {
	case timeslot.RolledOver:
		fmt.Println("! seçiminiz gece yarısını geçti, aynı saat bugüne taşındı")
	case timeslot.Cleared:
		fmt.Println("! seçtiğiniz saat geçti, lütfen yeni bir saat seçin")
	}
}

func runSlots(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("slots", flag.ExitOnError)
	watch := fs.Bool("watch", false, "dakikada bir yenile")
	_ = fs.Parse(args)

	w := checkout.NewWatcher(0, nil, printSlots)
	if !*watch {
		w.Tick()
		return nil
	}
	w.Start(ctx)
	w.Tick()
	<-ctx.Done()
	return nil
}

func runCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	location := fs.String("location", "", "teslimat noktası id")
	day := fs.String("day", "today", "today | tomorrow")
	hour := fs.Int("hour", -1, "teslimat saati (örn. 14)")
	payment := fs.String("payment", "", "cash | bank_transfer")
	note := fs.String("note", "", "teslimat notu")
	_ = fs.Parse(args)

	sid := sessionID()
	if sid == "" {
		return fmt.Errorf("önce giriş yapın: shopctl login")
	}

	dir, err := stateDir()
	if err != nil {
		return err
	}
	if *location == "" {
		// Fall back to the last chosen location before asking again.
		*location = loadSelectedLocation(dir)
	}
	if *location == "" {
		locs, err := newAPIClient(baseURL(), sid).locations(ctx)
		if err != nil {
			return err
		}
		fmt.Println("teslimat noktaları:")
		for _, l := range locs {
			fmt.Printf("  %s  %s\n", l.ID, l.Name)
		}
		return fmt.Errorf("-location ile bir teslimat noktası seçin")
	}
	if err := saveSelectedLocation(dir, *location); err != nil {
		return err
	}

	now := timeslot.ServiceNow()
	var slots []timeslot.Slot
	switch *day {
	case "today":
		slots = timeslot.ForDay(now, false)
	case "tomorrow":
		slots = timeslot.ForDay(now, true)
	default:
		return fmt.Errorf("-day today veya tomorrow olmalı")
	}
	slot, ok := timeslot.FindHour(slots, *hour)
	if !ok {
		return fmt.Errorf("saat %d için uygun teslimat aralığı yok", *hour)
	}

	store, err := openCart()
	if err != nil {
		return err
	}
	svc := &checkout.Service{
		Cart:      store,
		Submitter: checkout.NewClient(baseURL(), sid),
	}

	o, err := svc.PlaceOrder(ctx, *location, slot, order.PaymentMethod(*payment), *note)
	if err != nil {
		return err
	}
	fmt.Printf("sipariş alındı: %s\n", o.ID)
	fmt.Printf("  durum: %s\n", money.StatusLabel(string(o.Status)))
	fmt.Printf("  tutar: %s\n", money.FormatPrice(o.TotalAmountInCents))
	fmt.Printf("  teslimat: %s\n", o.EstimatedDeliveryTime)
	return nil
}

func runOrders(ctx context.Context) error {
	sid := sessionID()
	if sid == "" {
		return fmt.Errorf("önce giriş yapın: shopctl login")
	}
	api := newAPIClient(baseURL(), sid)
	orders, err := api.orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("henüz siparişiniz yok")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%s  %-12s %10s  %s\n",
			o.CreatedAt.In(timeslot.ServiceLocation()).Format("02.01.2006 15:04"),
			money.StatusLabel(string(o.Status)),
			money.FormatPrice(o.TotalAmountInCents),
			o.EstimatedDeliveryTime)
	}
	return nil
}
