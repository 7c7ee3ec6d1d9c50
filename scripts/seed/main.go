package main

import (
	"fmt"
	"log"

	"github.com/cookbook/internal/config"
	"github.com/cookbook/internal/db"
	"github.com/cookbook/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// 测试数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabaseURL, cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	createTestUsers()
	createTestRecipes()

	fmt.Println("测试数据生成完成！")
	fmt.Println("用户: admin (密码: admin123)")
	fmt.Println("用户: testuser (密码: user123)")
}

// 创建测试用户
func createTestUsers() {
	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，跳过创建")
		return
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := db.User{
		Username: "admin",
		Password: string(hashedPassword),
		IsAdmin:  true,
	}
	db.DB.Create(&admin)

	hashedPassword2, _ := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.DefaultCost)
	user := db.User{
		Username: "testuser",
		Password: string(hashedPassword2),
	}
	db.DB.Create(&user)

	fmt.Println("✅ 测试用户创建完成")
}

// 创建测试菜谱，走正式的服务层以便配料和分类按名称自动建档
func createTestRecipes() {
	var count int64
	db.DB.Model(&db.Recipe{}).Count(&count)
	if count > 0 {
		fmt.Println("菜谱已存在，跳过创建")
		return
	}

	var admin db.User
	db.DB.Where("username = ?", "admin").First(&admin)
	var tester db.User
	db.DB.Where("username = ?", "testuser").First(&tester)

	recipes := service.NewRecipeService(db.DB)
	votes := service.NewVoteService(db.DB)
	clicks := service.NewClickService(db.DB)

	seeds := []struct {
		title        string
		instructions string
		ingredients  []service.EntityRef
		categories   []service.EntityRef
	}{
		{
			title:        "番茄炒蛋",
			instructions: "## 做法\n\n1. 鸡蛋打散，番茄切块\n2. 热油先炒蛋，盛出\n3. 下番茄炒出汁后回锅翻匀，调味出锅",
			ingredients: []service.EntityRef{
				{Name: "番茄", Quantity: "2 个"},
				{Name: "鸡蛋", Quantity: "3 个"},
				{Name: "小葱", Quantity: "1 根"},
			},
			categories: []service.EntityRef{
				{Name: "家常菜"},
				{Name: "快手菜"},
			},
		},
		{
			title:        "红烧排骨",
			instructions: "## 做法\n\n1. 排骨焯水去腥\n2. 冰糖炒糖色，下排骨上色\n3. 加料酒生抽和热水，小火炖四十分钟收汁",
			ingredients: []service.EntityRef{
				{Name: "排骨", Quantity: "500 克"},
				{Name: "冰糖", Quantity: "20 克"},
				{Name: "生姜", Quantity: "3 片"},
			},
			categories: []service.EntityRef{
				{Name: "家常菜"},
				{Name: "硬菜"},
			},
		},
		{
			title:        "蒜蓉西兰花",
			instructions: "## 做法\n\n1. 西兰花掰小朵，焯水一分钟\n2. 蒜末爆香，下西兰花大火快炒\n3. 盐和少许蚝油调味",
			ingredients: []service.EntityRef{
				{Name: "西兰花", Quantity: "1 颗"},
				{Name: "大蒜", Quantity: "4 瓣"},
			},
			categories: []service.EntityRef{
				{Name: "素菜"},
				{Name: "快手菜"},
			},
		},
		{
			title:        "番茄鸡蛋面",
			instructions: "## 做法\n\n1. 照番茄炒蛋的路子先做浇头\n2. 另起锅煮面，面熟后捞入碗中\n3. 浇头连汤汁盖上，撒葱花",
			ingredients: []service.EntityRef{
				{Name: "番茄", Quantity: "1 个"},
				{Name: "鸡蛋", Quantity: "2 个"},
				{Name: "挂面", Quantity: "150 克"},
			},
			categories: []service.EntityRef{
				{Name: "主食"},
			},
		},
	}

	authors := []uint{admin.ID, tester.ID}
	created := make([]string, 0, len(seeds))
	for idx, seed := range seeds {
		id, err := recipes.Create(authors[idx%len(authors)], service.RecipeInput{
			Title:        seed.title,
			Instructions: seed.instructions,
			Ingredients:  seed.ingredients,
			Categories:   seed.categories,
		})
		if err != nil {
			log.Printf("创建菜谱失败: %v", err)
			continue
		}
		created = append(created, id)
	}

	// 附带一些投票和点击，让列表页有数据可看
	for idx, id := range created {
		if _, err := votes.Cast(id, admin.ID, 1); err != nil {
			log.Printf("投票失败: %v", err)
		}
		if idx%2 == 0 {
			if _, err := votes.Cast(id, tester.ID, 1); err != nil {
				log.Printf("投票失败: %v", err)
			}
		}
		for i := 0; i < idx+1; i++ {
			if _, err := clicks.Record(id, nil); err != nil {
				log.Printf("记录点击失败: %v", err)
			}
		}
	}

	fmt.Println("✅ 测试菜谱创建完成")
}
