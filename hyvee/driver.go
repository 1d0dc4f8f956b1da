// Package hyvee drives the Hy-Vee aisles-online storefront through a real
// browser. It implements cart reads and adds only; checkout is deliberately
// absent from the API.
package hyvee

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"cartsync"
)

const (
	cartURL  = baseURL + "/aisles-online/cart"
	loginURL = baseURL + "/account/login"

	loginFormSelector   = `form[action*="login"]`
	accountMenuSelector = `[data-testid="account-menu"], a[href*="/account/overview"]`
	cartItemSelector    = `[data-testid="cart-item"]`
	cartItemLink        = `a[href*="/p/"]`
	cartItemQty         = `[data-testid="quantity-input"]`
	addButtonSelector   = `button[aria-label^="Add to cart"]`
	outOfStockSelector  = `[data-testid="out-of-stock"]`
)

// Driver is a browser-backed cart driver. Start must succeed before any
// other method is called; Stop releases the browser.
type Driver struct {
	cfg      cartsync.HyveeConfig
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func NewDriver(cfg cartsync.HyveeConfig) *Driver {
	return &Driver{cfg: cfg}
}

func (d *Driver) navTimeout() time.Duration {
	if d.cfg.NavTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.cfg.NavTimeoutSecs) * time.Second
}

// Start launches the browser and connects a page. Launch failures are setup
// errors with a human next step, not transient run failures.
func (d *Driver) Start(ctx context.Context) error {
	slog.Info("DRIVER: Launching browser", "headless", d.cfg.Headless, "bin", d.cfg.BrowserBin)

	l := launcher.New().Headless(d.cfg.Headless)
	if d.cfg.BrowserBin != "" {
		l = l.Bin(d.cfg.BrowserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return cartsync.NewDriverSetupError(fmt.Sprintf("browser launch failed: %v", err))
	}
	d.launcher = l

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return cartsync.NewDriverSetupError(fmt.Sprintf("browser connect failed: %v", err))
	}
	d.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return cartsync.NewDriverSetupError(fmt.Sprintf("page create failed: %v", err))
	}
	d.page = page
	return nil
}

// Stop closes the browser and cleans up the launcher.
func (d *Driver) Stop() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
		d.browser = nil
	}
	if d.launcher != nil {
		d.launcher.Cleanup()
		d.launcher = nil
	}
	d.page = nil
	return err
}

// EnsureLoggedIn verifies the session by probing the DOM, logging in with
// the configured credentials when the login form is present. It never
// assumes success: after submitting, the account element must appear or the
// whole run is refused.
func (d *Driver) EnsureLoggedIn(ctx context.Context) error {
	if err := d.navigate(ctx, loginURL); err != nil {
		return err
	}

	if d.visible(accountMenuSelector) {
		slog.Info("DRIVER: Session already authenticated")
		return nil
	}

	form, err := d.page.Context(ctx).Timeout(d.navTimeout()).Element(loginFormSelector)
	if err != nil {
		return cartsync.NewAuthError("Hy-Vee", fmt.Errorf("neither account menu nor login form found: %w", err))
	}

	slog.Info("DRIVER: Submitting login form", "email", d.cfg.Email)
	if err := d.fill(form, `input[type="email"]`, d.cfg.Email); err != nil {
		return cartsync.NewAuthError("Hy-Vee", err)
	}
	if err := d.fill(form, `input[type="password"]`, d.cfg.Password); err != nil {
		return cartsync.NewAuthError("Hy-Vee", err)
	}
	submit, err := form.Element(`button[type="submit"]`)
	if err != nil {
		return cartsync.NewAuthError("Hy-Vee", fmt.Errorf("login submit button not found: %w", err))
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return cartsync.NewAuthError("Hy-Vee", fmt.Errorf("login submit failed: %w", err))
	}
	if err := d.page.WaitLoad(); err != nil {
		return cartsync.NewAuthError("Hy-Vee", fmt.Errorf("post-login load failed: %w", err))
	}

	if !d.visible(accountMenuSelector) {
		return cartsync.NewAuthError("Hy-Vee", fmt.Errorf("account menu absent after login submit"))
	}
	slog.Info("DRIVER: Login verified")
	return nil
}

// Snapshot reads the current cart: product identity, display name, and
// count per line item.
func (d *Driver) Snapshot(ctx context.Context) (cartsync.CartSnapshot, error) {
	if err := d.navigate(ctx, cartURL); err != nil {
		return nil, err
	}

	elements, err := d.page.Elements(cartItemSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart items: %w", err)
	}

	snapshot := make(cartsync.CartSnapshot, 0, len(elements))
	for _, el := range elements {
		entry, ok := d.parseCartItem(el)
		if !ok {
			continue
		}
		snapshot = append(snapshot, entry)
	}
	slog.Info("DRIVER: Cart snapshot", "entries", len(snapshot))
	return snapshot, nil
}

func (d *Driver) parseCartItem(el *rod.Element) (cartsync.CartEntry, bool) {
	entry := cartsync.CartEntry{Count: 1}

	if link, err := el.Element(cartItemLink); err == nil {
		if href, err := link.Attribute("href"); err == nil && href != nil {
			if id, ok := ProductIDFromHref(*href); ok {
				entry.Product.ID = id
			}
		}
		if name, err := link.Text(); err == nil {
			entry.DisplayName = strings.TrimSpace(name)
			entry.Product.Name = entry.DisplayName
		}
	}
	if entry.Product.ID == "" && entry.DisplayName == "" {
		return cartsync.CartEntry{}, false
	}

	if qty, err := el.Element(cartItemQty); err == nil {
		if raw, err := qty.Attribute("value"); err == nil && raw != nil {
			if n, err := strconv.Atoi(strings.TrimSpace(*raw)); err == nil && n > 0 {
				entry.Count = n
			}
		}
	}
	return entry, true
}

// AddToCart opens the product page and clicks the add button count times.
// Status classification, not errors, reports availability: the orchestrator
// decides what a not_found or out_of_stock means for the run.
func (d *Driver) AddToCart(ctx context.Context, product cartsync.ProductIdentity, count int) (cartsync.AddStatus, error) {
	if count < 1 {
		count = 1
	}
	if err := d.navigate(ctx, ProductURL(product.ID)); err != nil {
		return cartsync.AddTransientFailure, err
	}

	if d.visible(outOfStockSelector) {
		return cartsync.AddOutOfStock, nil
	}

	button, err := d.page.Context(ctx).Timeout(d.navTimeout()).Element(addButtonSelector)
	if err != nil {
		// No add button on a loaded page means the product is gone.
		return cartsync.AddNotFound, nil
	}

	if label, err := button.Attribute("aria-label"); err == nil && label != nil {
		if name, ok := ParseAddToCartLabel(*label); ok && product.Name != "" && !strings.EqualFold(name, product.Name) {
			slog.Warn("DRIVER: Add button names a different product",
				"expected", product.Name, "found", name, "product_id", product.ID)
		}
	}

	for i := 0; i < count; i++ {
		if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return cartsync.AddTransientFailure, fmt.Errorf("add click %d/%d failed: %w", i+1, count, err)
		}
	}
	slog.Info("DRIVER: Added to cart", "product_id", product.ID, "count", count)
	return cartsync.AddOK, nil
}

func (d *Driver) navigate(ctx context.Context, url string) error {
	page := d.page.Context(ctx).Timeout(d.navTimeout())
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

func (d *Driver) visible(selector string) bool {
	el, err := d.page.Timeout(2 * time.Second).Element(selector)
	if err != nil {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

func (d *Driver) fill(form *rod.Element, selector, value string) error {
	input, err := form.Element(selector)
	if err != nil {
		return fmt.Errorf("login field %s not found: %w", selector, err)
	}
	if err := input.Input(value); err != nil {
		return fmt.Errorf("login field %s input failed: %w", selector, err)
	}
	return nil
}
