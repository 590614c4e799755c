package workflow_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/shopspring/decimal"
)

// setupTestEnv starts throwaway mysql and redis containers, connects the
// globals against them, migrates, and returns a context carrying a real staff
// identity. Tests are gated behind INTEGRATION_TESTS because they need docker.
func setupTestEnv(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "myerp_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	staff, err := models.CreateStaff(ctx, &models.NewStaff{
		Account:       fmt.Sprintf("tester-%d", time.Now().UnixNano()),
		Name:          "测试员",
		Telephone:     "13812340000",
		IsManager:     true,
		IsStorekeeper: true,
	})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}

	ctx = utils.SetUserUidInContext(ctx, staff.Uid)
	ctx = utils.SetUserNameInContext(ctx, staff.Name)
	ctx = utils.SetIsBossInContext(ctx, true)
	ctx = utils.SetIsStorekeeperInContext(ctx, true)
	return ctx
}

// seedItem creates a brand, a category and one inventory item under them.
func seedItem(t *testing.T, ctx context.Context, brandName string, cost string) *models.Inventory {
	t.Helper()

	brand, err := models.CreateBrand(ctx, &models.NewBrand{Name: brandName})
	if err != nil {
		t.Fatalf("CreateBrand: %v", err)
	}
	category, err := models.CreateCategory(ctx, &models.NewCategory{Name: brandName + "类"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	item, err := models.CreateInventory(ctx, &models.NewInventory{
		Name:       brandName + "沙发",
		BrandId:    brand.ID,
		CategoryId: category.ID,
		Cost:       mustDecimal(t, cost),
	})
	if err != nil {
		t.Fatalf("CreateInventory: %v", err)
	}
	return item
}

func seedItemForBrand(t *testing.T, ctx context.Context, name string, brandId, categoryId int, cost string) *models.Inventory {
	t.Helper()
	item, err := models.CreateInventory(ctx, &models.NewInventory{
		Name:       name,
		BrandId:    brandId,
		CategoryId: categoryId,
		Cost:       mustDecimal(t, cost),
	})
	if err != nil {
		t.Fatalf("CreateInventory %s: %v", name, err)
	}
	return item
}

func seedClient(t *testing.T, ctx context.Context, name string, phone string) *models.Client {
	t.Helper()
	client, err := models.CreateClient(ctx, &models.NewClient{
		Name:      name,
		Telephone: phone,
		Address:   "测试地址",
		Level:     models.ClientLevelFirst,
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	return client
}

func reloadItem(t *testing.T, ctx context.Context, id int) *models.Inventory {
	t.Helper()
	item, err := utils.FetchModel[models.Inventory](ctx, id)
	if err != nil {
		t.Fatalf("reload inventory %d: %v", id, err)
	}
	return item
}

func assertCounters(t *testing.T, item *models.Inventory, onRoad, inStock, beenOrder, sold int) {
	t.Helper()
	if item.OnRoad != onRoad || item.InStock != inStock || item.BeenOrder != beenOrder || item.Sold != sold {
		t.Fatalf("%s counters = (on_road=%d, in_stock=%d, been_order=%d, sold=%d), want (%d, %d, %d, %d)",
			item.FullName(), item.OnRoad, item.InStock, item.BeenOrder, item.Sold,
			onRoad, inStock, beenOrder, sold)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("myerp-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("myerp-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=myerp_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
