package main

// openAPISpec is the hand-maintained API document served to the Swagger UI.
const openAPISpec = `{
  "swagger": "2.0",
  "info": {
    "title": "Fulfillment Service API",
    "description": "Order fulfillment and inventory reservation engine",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/orders": {
      "get": {
        "tags": ["Orders"],
        "summary": "List orders",
        "parameters": [
          {"name": "buyer_id", "in": "query", "type": "integer"},
          {"name": "seller_id", "in": "query", "type": "integer"},
          {"name": "status", "in": "query", "type": "string", "enum": ["pending", "accepted", "rejected", "packed", "dispatched", "delivered", "cancelled"]},
          {"name": "limit", "in": "query", "type": "integer"},
          {"name": "offset", "in": "query", "type": "integer"}
        ],
        "responses": {"200": {"description": "OK"}}
      },
      "post": {
        "tags": ["Orders"],
        "summary": "Create a new order",
        "parameters": [{
          "name": "body", "in": "body", "required": true,
          "schema": {
            "type": "object",
            "properties": {
              "buyer_id": {"type": "integer"},
              "seller_id": {"type": "integer"},
              "lines": {
                "type": "array",
                "items": {
                  "type": "object",
                  "properties": {
                    "product_id": {"type": "integer"},
                    "quantity": {"type": "integer"}
                  }
                }
              }
            }
          }
        }],
        "responses": {"201": {"description": "Created"}, "400": {"description": "Bad request"}}
      }
    },
    "/api/orders/{id}": {
      "get": {
        "tags": ["Orders"],
        "summary": "Get order by ID",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      }
    },
    "/api/orders/{id}/status": {
      "post": {
        "tags": ["Orders"],
        "summary": "Transition order status",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "type": "integer"},
          {
            "name": "body", "in": "body", "required": true,
            "schema": {
              "type": "object",
              "properties": {
                "status": {"type": "string"},
                "notes": {"type": "string"},
                "shipments": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "properties": {
                      "line_no": {"type": "integer"},
                      "quantity": {"type": "integer"},
                      "expected_restock_at": {"type": "string", "format": "date-time"}
                    }
                  }
                }
              }
            }
          }
        ],
        "responses": {
          "200": {"description": "OK"},
          "404": {"description": "Not found"},
          "409": {"description": "Invalid transition or insufficient inventory"},
          "503": {"description": "Busy, retry later"}
        }
      }
    },
    "/api/orders/{id}/invoice": {
      "post": {
        "tags": ["Orders"],
        "summary": "Generate the order's invoice",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Order not delivered"}}
      }
    },
    "/api/orders/{id}/audit": {
      "get": {
        "tags": ["Orders"],
        "summary": "Get order audit trail",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      }
    },
    "/api/inventory": {
      "get": {
        "tags": ["Inventory"],
        "summary": "List inventory records",
        "parameters": [
          {"name": "limit", "in": "query", "type": "integer"},
          {"name": "offset", "in": "query", "type": "integer"}
        ],
        "responses": {"200": {"description": "OK"}}
      },
      "post": {
        "tags": ["Inventory"],
        "summary": "Create an inventory record",
        "parameters": [{
          "name": "body", "in": "body", "required": true,
          "schema": {
            "type": "object",
            "properties": {
              "product_id": {"type": "integer"},
              "holder_id": {"type": "integer"},
              "quantity_on_hand": {"type": "integer"}
            }
          }
        }],
        "responses": {"201": {"description": "Created"}, "400": {"description": "Bad request"}}
      }
    },
    "/api/inventory/availability": {
      "get": {
        "tags": ["Inventory"],
        "summary": "Get availability for a product and holder",
        "parameters": [
          {"name": "product_id", "in": "query", "required": true, "type": "integer"},
          {"name": "holder_id", "in": "query", "required": true, "type": "integer"}
        ],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      }
    },
    "/api/inventory/{id}": {
      "get": {
        "tags": ["Inventory"],
        "summary": "Get inventory record by ID",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      },
      "delete": {
        "tags": ["Inventory"],
        "summary": "Deactivate inventory record",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      }
    },
    "/api/inventory/{product_id}/restock": {
      "post": {
        "tags": ["Inventory"],
        "summary": "Add stock for a product",
        "parameters": [
          {"name": "product_id", "in": "path", "required": true, "type": "integer"},
          {
            "name": "body", "in": "body", "required": true,
            "schema": {
              "type": "object",
              "properties": {
                "holder_id": {"type": "integer"},
                "quantity": {"type": "integer"}
              }
            }
          }
        ],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      }
    },
    "/health": {
      "get": {
        "tags": ["Health"],
        "summary": "Health check",
        "responses": {"200": {"description": "Healthy"}, "503": {"description": "Database unavailable"}}
      }
    }
  }
}`
